package tokenizer

import (
	"github.com/nvisycom/core/pkg/core"
	csvtok "github.com/nvisycom/core/pkg/tokenizer/csv"
	jsontok "github.com/nvisycom/core/pkg/tokenizer/json"
	"github.com/nvisycom/core/pkg/tokenizer/text"
	tomltok "github.com/nvisycom/core/pkg/tokenizer/toml"
	xmltok "github.com/nvisycom/core/pkg/tokenizer/xml"
	yamltok "github.com/nvisycom/core/pkg/tokenizer/yaml"
)

// RegisterDefaults registers the built-in format tokenizers with the global
// registry. Unknown content falls back to the plain-text tokenizer.
func RegisterDefaults() {
	RegisterDefaultsOn(GlobalRegistry)
}

// RegisterDefaultsOn registers the built-in format tokenizers on the given
// registry instance.
func RegisterDefaultsOn(r *Registry) {
	r.Register(core.KindText, func() core.Tokenizer { return text.New() })
	r.Register(core.KindUnknown, func() core.Tokenizer { return text.New() })
	r.Register(core.KindLog, func() core.Tokenizer { return text.NewLog() })
	r.Register(core.KindJSON, func() core.Tokenizer { return jsontok.New() })
	r.Register(core.KindXML, func() core.Tokenizer { return xmltok.New() })
	r.Register(core.KindYAML, func() core.Tokenizer { return yamltok.New() })
	r.Register(core.KindTOML, func() core.Tokenizer { return tomltok.New() })
	r.Register(core.KindCSV, func() core.Tokenizer { return csvtok.New() })
}
