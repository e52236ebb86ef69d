package main

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/jingkaihe/skillhub/pkg/presenter"
	"github.com/jingkaihe/skillhub/pkg/skillerr"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

func parseOutputFormat(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case "", formatTable:
		return formatTable, nil
	case formatJSON, formatYAML:
		return f, nil
	default:
		return "", skillerr.Configuration("unsupported output format "+s+", expected table, json or yaml", nil)
	}
}

// tabular is anything that can be shown as a table
type tabular interface {
	headers() []string
	rows() [][]string
}

// render writes v to w in the requested format. Table output goes through
// the presenter, structured output is the raw value.
func render(w io.Writer, format outputFormat, v tabular) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case formatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		p := presenter.NewWithOptions(w, w, presenter.ColorAuto)
		p.Table(v.headers(), v.rows())
		return nil
	}
}

// currentFormat returns the --output format, already validated in the root
// pre-run hook.
func currentFormat() outputFormat {
	f, err := parseOutputFormat(viper.GetString("output"))
	if err != nil {
		return formatTable
	}
	return f
}
