package cli

import (
	"github.com/spf13/cobra"

	"github.com/kbukum/longscribe/config"
)

// pipelineFlags are shared by run and rewrite. They override the loaded
// config only when set on the command line.
type pipelineFlags struct {
	speakerMap     string
	outDir         string
	promptDir      string
	template       string
	segmentMinutes float64
	segments       int
	language       string
	maxMemoryChars int
	generator      string
	model          string
	docx           bool
	mirror         bool
	derive         []string
	glossary       []string
}

func (f *pipelineFlags) register(cmd *cobra.Command) {
	fs := cmd.Flags()
	fs.StringVar(&f.speakerMap, "speaker-map", "", "Confirmed speaker map: inline JSON or a .json/.yaml file")
	fs.StringVarP(&f.outDir, "out-dir", "o", config.DefaultOutputDir, "Directory for run artifacts")
	fs.StringVar(&f.promptDir, "prompt-dir", config.DefaultPromptDir, "Directory overriding the built-in prompt templates")
	fs.StringVar(&f.template, "template", config.DefaultTemplate, "Segment prompt template name")
	fs.Float64Var(&f.segmentMinutes, "segment-minutes", config.DefaultSegmentMinutes, "Target segment length for timed transcripts")
	fs.IntVar(&f.segments, "segments", config.DefaultSegments, "Segment count for untimed transcripts")
	fs.StringVar(&f.language, "language", config.DefaultLanguage, "Transcript language hint")
	fs.IntVar(&f.maxMemoryChars, "max-memory-chars", config.DefaultMaxMemoryChars, "Rolling summary size passed to the generator")
	fs.StringVar(&f.generator, "generator", config.GeneratorOpenAI, "Text generator: openai or gemini")
	fs.StringVar(&f.model, "model", "", "Model of the selected generator")
	fs.BoolVar(&f.docx, "docx", false, "Also write final_package.docx")
	fs.BoolVar(&f.mirror, "mirror", false, "Copy artifacts to the configured storage under runs/<run-id>/")
	fs.StringSliceVar(&f.derive, "derive", nil, "Derivative templates rendered after assembly, e.g. ic_qa.md")
	fs.StringSliceVar(&f.glossary, "glossary", nil, "Known domain terms")
}

// apply copies every flag the user set into cfg.
func (f *pipelineFlags) apply(changed func(string) bool, cfg *config.Config) {
	if changed("out-dir") {
		cfg.Output.Dir = f.outDir
	}
	if changed("prompt-dir") {
		cfg.Output.PromptDir = f.promptDir
	}
	if changed("template") {
		cfg.Pipeline.Template = f.template
	}
	if changed("segment-minutes") {
		cfg.Pipeline.SegmentMinutes = f.segmentMinutes
	}
	if changed("segments") {
		cfg.Pipeline.Segments = f.segments
	}
	if changed("language") {
		cfg.Pipeline.Language = f.language
	}
	if changed("max-memory-chars") {
		cfg.Pipeline.MaxMemoryChars = f.maxMemoryChars
	}
	if changed("generator") {
		cfg.Generator = f.generator
	}
	if changed("model") {
		if cfg.Generator == config.GeneratorGemini {
			cfg.Gemini.Model = f.model
		} else {
			cfg.OpenAI.Model = f.model
		}
	}
	if changed("docx") {
		cfg.Output.Docx = f.docx
	}
	if changed("mirror") {
		cfg.Output.Mirror = f.mirror
	}
	if changed("derive") {
		cfg.Output.Derive = f.derive
	}
	if changed("glossary") {
		cfg.Pipeline.Glossary = f.glossary
	}
}
