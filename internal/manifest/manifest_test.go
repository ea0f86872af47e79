package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/stevedore/internal/model"
)

// writeDoc writes a config document into a temp dir and returns its path.
func writeDoc(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const composeDoc = `
services:
  web:
    image: nginx:alpine
    ports:
      - "8080:80"
    x-readiness-timeout: 30
  db:
    image: postgres:16
    container_name: primary-db
    environment:
      POSTGRES_USER: app
      POSTGRES_DB: appdb
`

const stackDoc = `
services:
  web:
    image: nginx:alpine
    networks:
      - frontend
networks:
  frontend: {}
`

const customDoc = `
app:
  container_name: my-app
  image: ghcr.io/acme/app:1.2
  ports:
    - "9000:9000"
  volumes:
    - data:/var/lib/app
worker:
  image: ghcr.io/acme/worker:1.2
`

// TestLoad_ClassifyCompose verifies content-based compose classification
// on a non-canonical filename.
func TestLoad_ClassifyCompose(t *testing.T) {
	doc, err := Load(writeDoc(t, "units.yml", composeDoc))

	require.NoError(t, err)
	assert.Equal(t, DialectCompose, doc.Dialect)
	assert.False(t, doc.UsedFallback())
}

// TestLoad_ClassifyStack verifies that a top-level networks section
// upgrades a compose document to the stack dialect.
func TestLoad_ClassifyStack(t *testing.T) {
	doc, err := Load(writeDoc(t, "deploy.yaml", stackDoc))

	require.NoError(t, err)
	assert.Equal(t, DialectStack, doc.Dialect)
}

// TestLoad_CanonicalFilename verifies the filename heuristic runs before
// content inspection: a canonical compose filename is compose-family even
// though classification then still checks for networks.
func TestLoad_CanonicalFilename(t *testing.T) {
	doc, err := Load(writeDoc(t, "docker-compose.yml", composeDoc))

	require.NoError(t, err)
	assert.Equal(t, DialectCompose, doc.Dialect)
}

// TestLoad_ClassifyCustom verifies that a document without a services
// section is custom.
func TestLoad_ClassifyCustom(t *testing.T) {
	doc, err := Load(writeDoc(t, "units.yaml", customDoc))

	require.NoError(t, err)
	assert.Equal(t, DialectCustom, doc.Dialect)
}

// TestListUnits_Compose verifies services keys are returned in document
// order.
func TestListUnits_Compose(t *testing.T) {
	doc, err := Load(writeDoc(t, "compose.yaml", composeDoc))
	require.NoError(t, err)

	units, err := doc.ListUnits()

	require.NoError(t, err)
	assert.Equal(t, []string{"web", "db"}, units)
}

// TestListUnits_Custom verifies custom discovery: container_name wins,
// otherwise the image base name (registry path and tag stripped).
func TestListUnits_Custom(t *testing.T) {
	doc, err := Load(writeDoc(t, "units.yaml", customDoc))
	require.NoError(t, err)

	units, err := doc.ListUnits()

	require.NoError(t, err)
	assert.Equal(t, []string{"my-app", "worker"}, units)
}

// TestListUnits_Empty verifies that a parseable document declaring no
// units is a hard NoUnitsFoundError.
func TestListUnits_Empty(t *testing.T) {
	doc, err := Load(writeDoc(t, "empty.yaml", "services: {}\n"))
	require.NoError(t, err)

	_, err = doc.ListUnits()

	var notFound *model.NoUnitsFoundError
	require.True(t, errors.As(err, &notFound))
}

// TestResolveRuntimeName verifies the container_name override chain.
func TestResolveRuntimeName(t *testing.T) {
	doc, err := Load(writeDoc(t, "compose.yaml", composeDoc))
	require.NoError(t, err)

	assert.Equal(t, "web", doc.ResolveRuntimeName("web"), "no override: declared name is the runtime name")
	assert.Equal(t, "primary-db", doc.ResolveRuntimeName("db"), "explicit container_name wins")
	assert.Equal(t, "ghost", doc.ResolveRuntimeName("ghost"), "unknown units pass through")
}

// TestReadinessOverride covers present, absent, and malformed extension
// values. Malformed values are treated as absent, never as errors.
func TestReadinessOverride(t *testing.T) {
	doc, err := Load(writeDoc(t, "compose.yaml", composeDoc))
	require.NoError(t, err)

	seconds, ok := doc.ReadinessOverride("web")
	assert.True(t, ok)
	assert.Equal(t, 30, seconds)

	_, ok = doc.ReadinessOverride("db")
	assert.False(t, ok, "db declares no override")

	malformed := `
services:
  api:
    image: api:1
    x-readiness-timeout: soon
`
	doc, err = Load(writeDoc(t, "m.yaml", malformed))
	require.NoError(t, err)
	_, ok = doc.ReadinessOverride("api")
	assert.False(t, ok, "non-numeric override is treated as absent")
}

// TestExtractRunCommand verifies ports, environment (sorted mapping form),
// and volumes are translated into run flags with the image last.
func TestExtractRunCommand(t *testing.T) {
	doc, err := Load(writeDoc(t, "units.yaml", customDoc))
	require.NoError(t, err)

	args, err := doc.ExtractRunCommand("my-app", "my-app")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"run", "-d", "--name", "my-app",
		"-p", "9000:9000",
		"-v", "data:/var/lib/app",
		"ghcr.io/acme/app:1.2",
	}, args)
}

// TestExtractRunCommand_EnvMapping verifies mapping-form environment
// variables are emitted deterministically in sorted key order.
func TestExtractRunCommand_EnvMapping(t *testing.T) {
	content := `
svc:
  container_name: svc
  image: svc:1
  environment:
    ZED: "3"
    ALPHA: one
`
	doc, err := Load(writeDoc(t, "env.yaml", content))
	require.NoError(t, err)

	args, err := doc.ExtractRunCommand("svc", "svc")

	require.NoError(t, err)
	assert.Equal(t, []string{
		"run", "-d", "--name", "svc",
		"-e", "ALPHA=one",
		"-e", "ZED=3",
		"svc:1",
	}, args)
}

// TestExtractRunCommand_NoImage verifies a unit without a determinable
// image is a hard ConfigInvalidError.
func TestExtractRunCommand_NoImage(t *testing.T) {
	content := `
svc:
  container_name: svc
  image: svc:1
`
	doc, err := Load(writeDoc(t, "noimg.yaml", content))
	require.NoError(t, err)

	_, err = doc.ExtractRunCommand("missing", "missing")

	var invalid *model.ConfigInvalidError
	require.True(t, errors.As(err, &invalid))
}

// TestSynthesizeUnitManifest verifies the synthesized manifest contains
// exactly the selected service plus referenced top-level sections, and
// parses back as valid compose.
func TestSynthesizeUnitManifest(t *testing.T) {
	doc, err := Load(writeDoc(t, "deploy.yaml", stackDoc))
	require.NoError(t, err)

	out, err := doc.SynthesizeUnitManifest("web", "web")
	require.NoError(t, err)

	var parsed struct {
		Services map[string]struct {
			Image         string `yaml:"image"`
			ContainerName string `yaml:"container_name"`
		} `yaml:"services"`
		Networks map[string]any `yaml:"networks"`
	}
	require.NoError(t, yaml.Unmarshal(out, &parsed))
	require.Len(t, parsed.Services, 1)
	assert.Equal(t, "nginx:alpine", parsed.Services["web"].Image)
	assert.Equal(t, "web", parsed.Services["web"].ContainerName, "runtime name is pinned when the service declares none")
	assert.Contains(t, parsed.Networks, "frontend", "top-level networks survive so references stay valid")
}

// TestSynthesizeUnitManifest_CustomDialect verifies synthesis is refused
// for non-compose documents.
func TestSynthesizeUnitManifest_CustomDialect(t *testing.T) {
	doc, err := Load(writeDoc(t, "units.yaml", customDoc))
	require.NoError(t, err)

	_, err = doc.SynthesizeUnitManifest("my-app", "my-app")

	var unsupported *model.UnsupportedDialectError
	require.True(t, errors.As(err, &unsupported))
}

// TestLoad_JSONCManifest verifies JSONC documents are comment-stripped and
// flow through the same pipeline.
func TestLoad_JSONCManifest(t *testing.T) {
	content := `{
  // frontend service
  "services": {
    "web": {"image": "nginx:alpine"}
  }
}`
	doc, err := Load(writeDoc(t, "units.jsonc", content))

	require.NoError(t, err)
	assert.Equal(t, DialectCompose, doc.Dialect)
	units, err := doc.ListUnits()
	require.NoError(t, err)
	assert.Equal(t, []string{"web"}, units)
}

// TestLoad_FallbackScan verifies that a document the parser rejects
// degrades to the line scan rather than failing outright.
func TestLoad_FallbackScan(t *testing.T) {
	broken := "this: is: not: valid: yaml\n" +
		"container_name: legacy-app\n" +
		"image: legacy:2\n" +
		"image: ghcr.io/acme/sidecar:1\n"
	doc, err := Load(writeDoc(t, "legacy.conf", broken))

	require.NoError(t, err)
	assert.True(t, doc.UsedFallback())
	assert.Equal(t, DialectCustom, doc.Dialect)

	units, err := doc.ListUnits()
	require.NoError(t, err)
	assert.Equal(t, []string{"legacy-app", "sidecar"}, units)

	// The fallback still yields a usable run command for the named unit.
	args, err := doc.ExtractRunCommand("legacy-app", "legacy-app")
	require.NoError(t, err)
	assert.Equal(t, []string{"run", "-d", "--name", "legacy-app", "legacy:2"}, args)
}

// TestLoad_Unreadable verifies a missing file is a hard ConfigInvalidError.
func TestLoad_Unreadable(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))

	var invalid *model.ConfigInvalidError
	require.True(t, errors.As(err, &invalid))
}
