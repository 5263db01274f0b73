package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/aluiziolira/go-wp2mdx/config"
	"github.com/spf13/cobra"
)

// envBinder overrides config values from WP2MDX_* variables for every flag
// the user did not set explicitly. The first parse error is kept.
type envBinder struct {
	cmd *cobra.Command
	err error
}

func (b *envBinder) skip(flag string) bool {
	return b.err != nil || b.cmd.Flags().Changed(flag)
}

func (b *envBinder) str(flag, key string, dst *string) {
	if b.skip(flag) {
		return
	}
	if v, ok := config.EnvString(key); ok {
		*dst = v
	}
}

func (b *envBinder) list(flag, key string, dst *[]string) {
	if b.skip(flag) {
		return
	}
	if v, ok := config.EnvString(key); ok {
		*dst = splitList(v)
	}
}

func (b *envBinder) pairs(flag, key string, dst *map[string]string) {
	if b.skip(flag) {
		return
	}
	v, ok := config.EnvString(key)
	if !ok {
		return
	}
	m := make(map[string]string)
	for _, pair := range splitList(v) {
		k, val, found := strings.Cut(pair, "=")
		if !found {
			b.err = fmt.Errorf("%s: expected key=value, got %q", key, pair)
			return
		}
		m[strings.TrimSpace(k)] = strings.TrimSpace(val)
	}
	*dst = m
}

func (b *envBinder) boolean(flag, key string, dst *bool) {
	if b.skip(flag) {
		return
	}
	v, ok, err := config.EnvBool(key)
	if err != nil {
		b.err = err
		return
	}
	if ok {
		*dst = v
	}
}

func (b *envBinder) integer(flag, key string, dst *int) {
	if b.skip(flag) {
		return
	}
	v, ok, err := config.EnvInt(key)
	if err != nil {
		b.err = err
		return
	}
	if ok {
		*dst = v
	}
}

func (b *envBinder) millis(flag, key string, dst *time.Duration) {
	if b.skip(flag) {
		return
	}
	v, ok, err := config.EnvMillis(key)
	if err != nil {
		b.err = err
		return
	}
	if ok {
		*dst = v
	}
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
