package codec

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type mode int

func (m *mode) UnmarshalText(text []byte) error {
	switch string(text) {
	case "on":
		*m = 1
	case "off":
		*m = 0
	default:
		return errors.New("bad mode")
	}
	return nil
}

func TestTextUnmarshalerHookFunc(t *testing.T) {
	type args struct {
		fromType, toType reflect.Type
		data             interface{}
	}
	type expected struct {
		converted interface{}
		err       error
	}
	tests := []struct {
		description string
		args        args
		expected    expected
	}{
		{
			description: "StringToMode",
			args: args{
				fromType: reflect.TypeOf(""),
				toType:   reflect.TypeOf(mode(0)),
				data:     "on",
			},
			expected: expected{
				converted: mode(1),
			},
		},
		{
			description: "InvalidStringToMode/Errors",
			args: args{
				fromType: reflect.TypeOf(""),
				toType:   reflect.TypeOf(mode(0)),
				data:     "sideways",
			},
			expected: expected{
				err: errors.New("bad mode"),
			},
		},
		{
			description: "IntToMode/Passthrough",
			args: args{
				fromType: reflect.TypeOf(0),
				toType:   reflect.TypeOf(mode(0)),
				data:     1,
			},
			expected: expected{
				converted: 1,
			},
		},
		{
			description: "StringToString/Passthrough",
			args: args{
				fromType: reflect.TypeOf(""),
				toType:   reflect.TypeOf(""),
				data:     "on",
			},
			expected: expected{
				converted: "on",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			converted, err := textUnmarshalerHookFunc(tt.args.fromType, tt.args.toType, tt.args.data)
			require.Equal(t, tt.expected.err, err)
			require.EqualValues(t, tt.expected.converted, converted)
		})
	}
}

func TestSecondsDurationHookFunc(t *testing.T) {
	durationType := reflect.TypeOf(time.Duration(0))
	tests := []struct {
		description string
		fromType    reflect.Type
		toType      reflect.Type
		data        interface{}
		converted   interface{}
		fails       bool
	}{
		{
			description: "IntToDuration",
			fromType:    reflect.TypeOf(0),
			toType:      durationType,
			data:        300,
			converted:   300 * time.Second,
		},
		{
			description: "Float64ToDuration",
			fromType:    reflect.TypeOf(0.0),
			toType:      durationType,
			data:        1.5,
			converted:   1500 * time.Millisecond,
		},
		{
			description: "StringToDuration",
			fromType:    reflect.TypeOf(""),
			toType:      durationType,
			data:        "2m",
			converted:   2 * time.Minute,
		},
		{
			description: "InvalidStringToDuration/Errors",
			fromType:    reflect.TypeOf(""),
			toType:      durationType,
			data:        "soon",
			fails:       true,
		},
		{
			description: "IntToInt/Passthrough",
			fromType:    reflect.TypeOf(0),
			toType:      reflect.TypeOf(0),
			data:        300,
			converted:   300,
		},
	}

	for _, tt := range tests {
		t.Run(tt.description, func(t *testing.T) {
			converted, err := secondsDurationHookFunc(tt.fromType, tt.toType, tt.data)
			if tt.fails {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.EqualValues(t, tt.converted, converted)
		})
	}
}
