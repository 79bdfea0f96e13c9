package config

import (
	"github.com/go-viper/mapstructure/v2"
)

// mapstructureTextUnmarshalerHook composes the duration-string hook viper
// ships by default with encoding.TextUnmarshaler support, so a YAML/env
// value like "4MiB" decodes straight into a bytesize.ByteSize field via
// its own UnmarshalText instead of needing a bespoke mapstructure hook
// per size-valued field.
func mapstructureTextUnmarshalerHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.TextUnmarshallerHookFunc(),
	)
}
