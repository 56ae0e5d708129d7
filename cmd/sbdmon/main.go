package main

import (
	"flag"
	"log"
	"os"
	"strings"

	"github.com/robotalks/sbd.go/pkg/telemetry"
)

var (
	mqttURL    = "mqtt://localhost:1883/"
	device     = "+"
	outputJSON bool
)

func init() {
	if val := os.Getenv("SBD_MQTT_URL"); val != "" {
		mqttURL = val
	}
	flag.StringVar(&mqttURL, "mqtt", mqttURL, "MQTT broker URL.")
	flag.StringVar(&device, "device", device, "Device ID to watch, + for all.")
	flag.BoolVar(&outputJSON, "json", outputJSON, "Print payloads as JSON.")
}

func main() {
	flag.Parse()
	log.SetFlags(log.Lmicroseconds)

	q, err := telemetry.NewQueueFromURL(mqttURL)
	if err != nil {
		log.Fatalln(err)
	}
	if token := q.Connect(); token.Wait() && token.Error() != nil {
		log.Fatalln(token.Error())
	}

	q.Sub(device+"/#", telemetry.Handler(func(topic string, payload []byte) {
		if outputJSON {
			js, err := telemetry.JSON(payload)
			if err != nil {
				log.Printf("%s: bad message: %v", topic, err)
				return
			}
			log.Printf("%s: %s", topic, js)
			return
		}
		switch {
		case strings.HasSuffix(topic, "/"+telemetry.TopicStatus):
			st, err := telemetry.DecodeStatus(payload)
			if err != nil {
				log.Printf("%s: bad message: %v", topic, err)
				return
			}
			if st.Error != "" {
				log.Printf("%s: %s (boot %s): %s", topic, st.State, st.BootID, st.Error)
			} else {
				log.Printf("%s: %s (boot %s)", topic, st.State, st.BootID)
			}
		case strings.HasSuffix(topic, "/"+telemetry.TopicVerdict):
			v, err := telemetry.DecodeVerdict(payload)
			if err != nil {
				log.Printf("%s: bad message: %v", topic, err)
				return
			}
			log.Printf("%s: #%d [%s] %s score=%d threshold=%d %s",
				topic, v.Seq, v.Window, v.Verdict, v.Score, v.Threshold, v.Error)
		default:
			log.Printf("%s: %d bytes", topic, len(payload))
		}
	}))
	<-(chan struct{})(nil)
}
