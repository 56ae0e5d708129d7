// Package telemetry publishes device status and served verdicts over MQTT.
//
// Payloads are protobuf-encoded google.protobuf.Struct messages on topics
// <device-id>/status (retained) and <device-id>/verdict.
package telemetry
