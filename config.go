package atlas

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclsimple"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/function"
)

type Config struct {
	Concurrency int                 `hcl:"concurrency,optional"`
	DataPath    string              `hcl:"data_path"`
	MarkerPath  string              `hcl:"marker_path,optional"`
	Web         *WebConfigBlock     `hcl:"web,block"`
	Worlds      []*WorldConfigBlock `hcl:"world,block"`
	Maps        []*MapConfigBlock   `hcl:"map,block"`
}

type WebConfigBlock struct {
	Bind string `hcl:"bind"`
}

type WorldConfigBlock struct {
	Name string `hcl:"name,label"`
	Path string `hcl:"path"`
}

type MapConfigBlock struct {
	ID    string `hcl:"id,label"`
	Name  string `hcl:"name,optional"`
	World string `hcl:"world"`
}

func newHCLEvalContext() *hcl.EvalContext {
	return &hcl.EvalContext{
		Variables: map[string]cty.Value{},
		Functions: map[string]function.Function{},
	}
}

func LoadConfig(path string) (*Config, error) {
	var cfg Config
	evalCtx := newHCLEvalContext()
	err := hclsimple.DecodeFile(path, evalCtx, &cfg)
	if err != nil {
		return nil, err
	}

	if cfg.DataPath == "" {
		return nil, fmt.Errorf("config: data_path is required")
	}

	return &cfg, nil
}
