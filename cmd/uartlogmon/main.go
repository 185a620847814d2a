package main

import (
	"flag"
	"log"
	"strings"

	"github.com/logtalks/uartlog.go/pkg/device"
	"github.com/logtalks/uartlog.go/pkg/transport/mqtt"
)

var (
	mqttURL = device.Default().BrokerURL
	showRaw = false
)

func init() {
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.BoolVar(&showRaw, "raw", showRaw, "Also dump the raw uart streams.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := mqtt.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}

	q.Sub("#", mqtt.Handler(func(topic string, payload []byte) {
		switch {
		case strings.HasSuffix(topic, "/meta"):
			if len(payload) == 0 {
				log.Printf("%s: offline", topic)
			} else {
				log.Printf("%s: %s", topic, string(payload))
			}
		case strings.HasSuffix(topic, "/mount"),
			strings.HasSuffix(topic, "/beat"):
			log.Printf("%s: %s", topic, string(payload))
		case strings.HasSuffix(topic, "/activity"):
			state := "idle"
			if string(payload) == "1" {
				state = "busy"
			}
			log.Printf("%s: %s", topic, state)
		case strings.HasSuffix(topic, "/uart"):
			if showRaw {
				log.Printf("%s: %q", topic, payload)
			}
		default:
			log.Printf("%s: %d bytes", topic, len(payload))
		}
	}))
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}
	<-(chan struct{})(nil)
}
