package rewrite

import "github.com/concolato/flask-upgrade/internal/pyfront"

// Options configure the per-file pipeline.
type Options struct {
	// TeardownDetection enables the structural pass that demotes
	// pass-through after_request handlers.
	TeardownDetection bool
}

// RewriteResult pairs a file's original text with its transformed text.
type RewriteResult struct {
	Path        string
	Original    string
	Transformed string
}

// Changed reports whether the pipeline produced any modification.
func (r RewriteResult) Changed() bool {
	return r.Original != r.Transformed
}

// Pipeline applies the upgrade passes to one file at a time, in a fixed
// order: endpoint references first, then the structural teardown rewrite,
// then the blueprint rewrite. Stage order matters because the blueprint pass
// operates on the line offsets the teardown pass leaves behind. The pipeline
// holds no mutable state, so one instance can serve any number of files.
type Pipeline struct {
	endpoint  *LiteralCallRewriter
	teardown  *TeardownPass
	blueprint *BlueprintPass
	opts      Options
}

// NewPipeline builds the pipeline over the given structural frontend.
func NewPipeline(frontend pyfront.Frontend, opts Options) *Pipeline {
	return &Pipeline{
		endpoint:  NewEndpointRewriter(),
		teardown:  NewTeardownPass(frontend),
		blueprint: NewBlueprintPass(),
		opts:      opts,
	}
}

// RewriteSource runs the full pipeline over one source file.
func (p *Pipeline) RewriteSource(path, text string) RewriteResult {
	out := p.endpoint.Apply(text)
	if p.opts.TeardownDetection {
		out = p.teardown.Apply(out)
	}
	out = p.blueprint.Apply(path, out)
	return RewriteResult{Path: path, Original: text, Transformed: out}
}

// RewriteTemplate runs only the lexical endpoint pass, for files that are not
// source code but reference endpoints in url_for expressions.
func (p *Pipeline) RewriteTemplate(path, text string) RewriteResult {
	return RewriteResult{Path: path, Original: text, Transformed: p.endpoint.Apply(text)}
}
