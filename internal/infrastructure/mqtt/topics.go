package mqtt

import "fmt"

// TopicPrefix is the root of every Hearth topic.
const TopicPrefix = "hearth"

// Topics builds Hearth MQTT topic names.
//
//	topics := mqtt.Topics{}
//	topics.DeviceState("door") // "hearth/state/door"
type Topics struct{}

// Command is where operators and integrations send commands.
func (Topics) Command() string { return TopicPrefix + "/command" }

// CommandResult carries the outcome of each MQTT command.
func (Topics) CommandResult() string { return TopicPrefix + "/command/result" }

// State carries the retained full actuator snapshot.
func (Topics) State() string { return TopicPrefix + "/state" }

// DeviceState carries the retained state of one device.
//
// Example: hearth/state/window
func (Topics) DeviceState(device string) string {
	return fmt.Sprintf("%s/state/%s", TopicPrefix, device)
}

// Mode carries the retained mode set.
func (Topics) Mode() string { return TopicPrefix + "/mode" }

// Alert carries emergency and security alerts.
func (Topics) Alert() string { return TopicPrefix + "/alert" }

// Emergency carries emergency trigger and restore events.
func (Topics) Emergency() string { return TopicPrefix + "/emergency" }

// Intent is where speech and gesture front ends send recognised requests.
func (Topics) Intent() string { return TopicPrefix + "/intent" }

// IntentReply carries the reply to each intent.
func (Topics) IntentReply() string { return TopicPrefix + "/intent/reply" }

// SensorState is where sensor nodes publish readings.
func (Topics) SensorState() string { return TopicPrefix + "/sensors/state" }

// DisplayStatus carries the status line for remote displays.
func (Topics) DisplayStatus() string { return TopicPrefix + "/display/status" }

// DisplayAlert carries alert text for remote displays.
func (Topics) DisplayAlert() string { return TopicPrefix + "/display/alert" }

// SystemStatus carries the retained online/offline status and the LWT.
func (Topics) SystemStatus() string { return TopicPrefix + "/system/status" }

// AllStates matches every per-device state topic.
func (Topics) AllStates() string { return TopicPrefix + "/state/+" }

// All matches every Hearth topic.
func (Topics) All() string { return TopicPrefix + "/#" }
