// Package mqtt connects Hearth to an MQTT broker.
//
// MQTT is an optional transport: commands arrive on hearth/command,
// actuator state and alerts are published under hearth/, and a sensor
// node may publish readings to hearth/sensors/state. The client
// reconnects automatically, restores its subscriptions on reconnect, and
// registers a Last Will so subscribers see the controller go offline.
//
// Usage:
//
//	client, err := mqtt.Connect(ctx, cfg.MQTT)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//
//	err = client.Subscribe(mqtt.Topics{}.Command(), 1,
//	    func(topic string, payload []byte) error {
//	        return handle(payload)
//	    })
package mqtt
