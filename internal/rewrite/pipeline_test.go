package rewrite

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/concolato/flask-upgrade/internal/pyfront"
)

// Test Plan for the pipeline:
// - All three stages apply in order on a representative file
// - A second full run over the output is a no-op (idempotence)
// - Endpoint references are normalized, not toggled, across repeated runs
// - Disabling teardown detection skips only that stage
// - Template rewriting applies the endpoint pass alone

func newPipeline(t *testing.T, opts Options) *Pipeline {
	t.Helper()
	f := pyfront.NewPython()
	require.NoError(t, pyfront.Probe(f))
	return NewPipeline(f, opts)
}

const sampleSource = `from flask import Module, url_for

admin = Module(__name__)

@admin.route('/')
def index():
    return url_for('index')

@admin.after_request
def finish(response):
    log_request()
    return response

app.register_module(admin)
`

func TestPipelineFullRewrite(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, Options{TeardownDetection: true})
	result := p.RewriteSource("myapp/admin.py", sampleSource)

	require.True(t, result.Changed())
	out := result.Transformed
	assert.Contains(t, out, "from flask import Blueprint, url_for")
	assert.Contains(t, out, "admin = Blueprint('admin', __name__)")
	assert.Contains(t, out, "url_for('.index')")
	assert.Contains(t, out, "@admin.teardown_request")
	assert.Contains(t, out, "def finish(exception):")
	assert.Contains(t, out, "app.register_blueprint(admin)")
	assert.NotContains(t, out, "return response")
}

func TestPipelineIdempotent(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, Options{TeardownDetection: true})
	once := p.RewriteSource("myapp/admin.py", sampleSource).Transformed
	twice := p.RewriteSource("myapp/admin.py", once)

	assert.False(t, twice.Changed(), "second run must produce no further diff")
}

func TestPipelineEndpointNotReinverted(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, Options{TeardownDetection: true})
	once := p.RewriteSource("views.py", "x = url_for('foo')\n").Transformed
	assert.Equal(t, "x = url_for('.foo')\n", once)

	twice := p.RewriteSource("views.py", once)
	assert.False(t, twice.Changed())
	assert.Equal(t, once, twice.Transformed)
}

func TestPipelineTeardownDisabled(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, Options{TeardownDetection: false})
	out := p.RewriteSource("myapp/admin.py", sampleSource).Transformed

	assert.Contains(t, out, "@admin.after_request")
	assert.Contains(t, out, "return response")
	// The other stages still ran.
	assert.Contains(t, out, "url_for('.index')")
	assert.Contains(t, out, "admin = Blueprint('admin', __name__)")
}

func TestPipelineTemplateOnlyEndpointPass(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, Options{TeardownDetection: true})
	in := strings.Join([]string{
		`<a href="{{ url_for('index') }}">home</a>`,
		"{% if request.module %}{% endif %}",
		"",
	}, "\n")
	result := p.RewriteTemplate("templates/base.html", in)

	assert.Contains(t, result.Transformed, `url_for('.index')`)
	// Source-only passes must not run on templates.
	assert.Contains(t, result.Transformed, "request.module")
}

func TestPipelineNoChangeForCleanFile(t *testing.T) {
	t.Parallel()

	p := newPipeline(t, Options{TeardownDetection: true})
	in := "from flask import Blueprint\n\nbp = Blueprint('admin', __name__)\n"
	result := p.RewriteSource("admin.py", in)

	assert.False(t, result.Changed())
}
