package automation

import (
	"errors"
	"testing"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		name    string
		json    string
		want    Command
		wantErr error
	}{
		{
			name: "fan string value",
			json: `{"type":"CONTROL_DEVICE","target":"Fan","value":"HIGH"}`,
			want: Command{Type: ControlDevice, Target: "fan", Value: "HIGH", Source: SourceAPI},
		},
		{
			name: "numeric value",
			json: `{"type":"control_device","target":"window","value":50}`,
			want: Command{Type: ControlDevice, Target: "window", Value: "50", Source: SourceAPI},
		},
		{
			name: "boolean mode",
			json: `{"type":"SET_MODE","target":"night","value":true,"source":"mqtt"}`,
			want: Command{Type: SetMode, Target: "night", Value: "true", Source: SourceMQTT},
		},
		{
			name: "scene defaults to activate",
			json: `{"type":"SCENE_CONTROL","target":"Movie Night"}`,
			want: Command{Type: SceneControl, Target: "Movie Night", Value: SceneActivate, Source: SourceAPI},
		},
		{
			name: "schedule create without id",
			json: `{"type":"UPDATE_SCHEDULE","value":"CREATE","parameters":{"device":"fan"}}`,
			want: Command{Type: UpdateSchedule, Value: ScheduleCreate, Source: SourceAPI},
		},
		{name: "unknown type", json: `{"type":"SELF_DESTRUCT","target":"fan"}`, wantErr: ErrInvalidCommand},
		{name: "missing type", json: `{"target":"fan"}`, wantErr: ErrUnknownType},
		{name: "unknown device", json: `{"type":"CONTROL_DEVICE","target":"toaster"}`, wantErr: ErrUnknownTarget},
		{name: "reserved mode", json: `{"type":"SET_MODE","target":"active","value":false}`, wantErr: ErrUnknownTarget},
		{name: "unknown threshold", json: `{"type":"SET_THRESHOLD","target":"noise","value":3}`, wantErr: ErrUnknownTarget},
		{name: "unknown rule", json: `{"type":"AUTOMATION_RULE","target":"garden","value":true}`, wantErr: ErrUnknownTarget},
		{name: "schedule update needs id", json: `{"type":"UPDATE_SCHEDULE","value":"update"}`, wantErr: ErrInvalidCommand},
		{name: "bad schedule action", json: `{"type":"UPDATE_SCHEDULE","target":"s1","value":"explode"}`, wantErr: ErrInvalidValue},
		{name: "scene needs target", json: `{"type":"SCENE_CONTROL"}`, wantErr: ErrInvalidCommand},
		{name: "object value", json: `{"type":"CONTROL_DEVICE","target":"fan","value":{"a":1}}`, wantErr: ErrInvalidCommand},
		{name: "not json", json: `fan high`, wantErr: ErrInvalidCommand},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCommand([]byte(tt.json), SourceAPI)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("ParseCommand() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseCommand() error = %v", err)
			}
			if got.ID == "" {
				t.Error("ID not assigned")
			}
			got.ID = ""
			if got.Type != tt.want.Type || got.Target != tt.want.Target ||
				got.Value != tt.want.Value || got.Source != tt.want.Source {
				t.Errorf("ParseCommand() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestValueConversions(t *testing.T) {
	boolTests := map[Value]bool{"true": true, "ON": true, "1": true, "0": false, "off": false, "": false}
	for v, want := range boolTests {
		got, err := v.Bool()
		if err != nil || got != want {
			t.Errorf("Value(%q).Bool() = %v, %v; want %v", string(v), got, err, want)
		}
	}
	if _, err := Value("maybe").Bool(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Bool(maybe) error = %v", err)
	}
	if n, err := Value("75%").Int(); err != nil || n != 75 {
		t.Errorf("Int(75%%) = %d, %v", n, err)
	}
	if _, err := Value("lots").Float(); !errors.Is(err, ErrInvalidValue) {
		t.Errorf("Float(lots) error = %v", err)
	}
}

func TestTypeText(t *testing.T) {
	for typ, name := range typeNames {
		b, _ := typ.MarshalText()
		if string(b) != name {
			t.Errorf("MarshalText(%d) = %s, want %s", typ, b, name)
		}
		var back Type
		if err := back.UnmarshalText(b); err != nil || back != typ {
			t.Errorf("UnmarshalText(%s) = %v, %v", b, back, err)
		}
	}
}
