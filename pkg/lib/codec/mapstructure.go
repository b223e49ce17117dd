package codec

import (
	"encoding"
	"reflect"
	"time"

	"github.com/mitchellh/mapstructure"
)

var durationType = reflect.TypeOf(time.Duration(0))

// TextUnmarshalerHookFunc decodes strings into any type whose pointer
// implements encoding.TextUnmarshaler.
func TextUnmarshalerHookFunc() mapstructure.DecodeHookFunc {
	return textUnmarshalerHookFunc
}

func textUnmarshalerHookFunc(f, t reflect.Type, data interface{}) (interface{}, error) {
	if f.Kind() != reflect.String {
		return data, nil
	}
	ptr := reflect.New(t)
	u, ok := ptr.Interface().(encoding.TextUnmarshaler)
	if !ok {
		return data, nil
	}
	if err := u.UnmarshalText([]byte(data.(string))); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// SecondsDurationHookFunc decodes plain numbers as seconds and strings as
// time.ParseDuration input.
func SecondsDurationHookFunc() mapstructure.DecodeHookFunc {
	return secondsDurationHookFunc
}

func secondsDurationHookFunc(f, t reflect.Type, data interface{}) (interface{}, error) {
	if t != durationType {
		return data, nil
	}

	switch f.Kind() {
	case reflect.String:
		return time.ParseDuration(data.(string))
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return time.Duration(reflect.ValueOf(data).Int()) * time.Second, nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return time.Duration(reflect.ValueOf(data).Uint()) * time.Second, nil
	case reflect.Float32, reflect.Float64:
		return time.Duration(reflect.ValueOf(data).Float() * float64(time.Second)), nil
	default:
		return data, nil
	}
}
