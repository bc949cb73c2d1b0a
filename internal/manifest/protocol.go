package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/cloud-assembly/cxschema/internal/schema"
	"github.com/cloud-assembly/cxschema/internal/version"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// normalizer rewrites legacy encodings of a kind and reports how many
// elements it changed.
type normalizer func(Document) (Document, int)

// Protocol saves and loads one kind of manifest.
type Protocol struct {
	kind      Kind
	grammar   *schema.Grammar
	raw       string
	current   *semver.Version
	normalize normalizer
}

func newProtocol(kind Kind, grammar []byte, current string, normalize normalizer) (*Protocol, error) {
	cur, err := version.Parse(current)
	if err != nil {
		return nil, fmt.Errorf("current schema version: %w", err)
	}
	g, err := schema.Compile(string(kind)+".schema.json", grammar)
	if err != nil {
		return nil, err
	}
	return &Protocol{
		kind:      kind,
		grammar:   g,
		raw:       current,
		current:   cur,
		normalize: normalize,
	}, nil
}

type options struct {
	fs               afero.Fs
	log              *zap.Logger
	skipVersionCheck bool
	skipEnumCheck    bool
}

// Option configures a single Save or Load call.
type Option func(*options)

// WithFs makes the call read and write through fs instead of the OS file system.
func WithFs(fs afero.Fs) Option {
	return func(o *options) { o.fs = fs }
}

// WithLogger sets the logger used for debug output.
func WithLogger(log *zap.Logger) Option {
	return func(o *options) { o.log = log }
}

// SkipVersionCheck accepts documents newer than this build supports. The
// version field must still be a valid semantic version.
func SkipVersionCheck() Option {
	return func(o *options) { o.skipVersionCheck = true }
}

// SkipEnumCheck ignores enum violations, so documents using discriminator
// values unknown to this build still load.
func SkipEnumCheck() Option {
	return func(o *options) { o.skipEnumCheck = true }
}

func newOptions(opts []Option) *options {
	o := &options{
		fs:  afero.NewOsFs(),
		log: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Save writes doc to path with the current version stamped on a copy.
// Existing content is replaced. File system errors are returned as is.
func (p *Protocol) Save(doc Document, path string, opts ...Option) error {
	o := newOptions(opts)
	data, err := encode(doc, p.raw)
	if err != nil {
		return fmt.Errorf("encoding %s manifest: %w", p.kind.Description(), err)
	}
	o.log.Debug("saving manifest",
		zap.String("path", path),
		zap.String("kind", string(p.kind)),
		zap.String("version", p.raw))
	return afero.WriteFile(o.fs, path, data, 0644)
}

// Load reads, normalizes, version-checks, and validates the document at path.
// No document is returned when any step fails.
func (p *Protocol) Load(path string, opts ...Option) (Document, error) {
	o := newOptions(opts)
	log := o.log.With(zap.String("path", path), zap.String("kind", string(p.kind)))

	data, err := afero.ReadFile(o.fs, path)
	if err != nil {
		return nil, err
	}
	doc, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("%w %s: %w", ErrMalformedInput, path, err)
	}

	if p.normalize != nil {
		var rewritten int
		doc, rewritten = p.normalize(doc)
		if rewritten > 0 {
			log.Debug("rewrote legacy stack tags", zap.Int("tags", rewritten))
		}
	}

	raw, ok := doc[versionKey].(string)
	if !ok {
		return nil, fmt.Errorf("%w: %s manifest %s has no version string", ErrInvalidVersionFormat, p.kind.Description(), path)
	}
	actual, err := version.Parse(raw)
	if err != nil {
		return nil, err
	}
	if version.GreaterThan(actual, p.current) {
		if !o.skipVersionCheck {
			return nil, fmt.Errorf("%w: Maximum schema version supported is %s, but found %s", ErrVersionMismatch, p.raw, raw)
		}
		log.Warn("loading manifest newer than supported schema version",
			zap.String("version", raw), zap.String("supported", p.raw))
	}

	result, err := p.grammar.Validate(map[string]any(withoutVersion(doc)))
	if err != nil {
		return nil, err
	}
	if o.skipEnumCheck {
		result = result.Without("enum")
	}
	if !result.Valid {
		log.Debug("manifest failed validation", zap.Int("issues", len(result.Issues)))
		return nil, &ValidationError{Kind: p.kind, Path: path, Issues: result.Issues}
	}

	log.Debug("loaded manifest", zap.String("version", raw))
	return doc, nil
}

// decode parses data into a Document. Numbers are kept as json.Number so
// they round-trip without loss.
func decode(data []byte) (Document, error) {
	v, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("top-level value is %T, not an object", v)
	}
	return Document(obj), nil
}

// encode renders doc as 2-space indented JSON with the version stamp as the
// first key and every other key in sorted order.
func encode(doc Document, ver string) ([]byte, error) {
	body, err := marshalCompact(map[string]any(withoutVersion(doc)))
	if err != nil {
		return nil, err
	}
	stamp, err := marshalCompact(ver)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"` + versionKey + `":`)
	buf.Write(stamp)
	if len(body) > len("{}") {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}

	var out bytes.Buffer
	if err := json.Indent(&out, buf.Bytes(), "", "  "); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func marshalCompact(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// withoutVersion returns a shallow copy of doc without the version field.
func withoutVersion(doc Document) Document {
	out := make(Document, len(doc))
	for k, v := range doc {
		if k != versionKey {
			out[k] = v
		}
	}
	return out
}

func save(kind Kind, doc Document, path string, opts []Option) error {
	p, err := protocolFor(kind)
	if err != nil {
		return err
	}
	return p.Save(doc, path, opts...)
}

func load(kind Kind, path string, opts []Option) (Document, error) {
	p, err := protocolFor(kind)
	if err != nil {
		return nil, err
	}
	return p.Load(path, opts...)
}

// Save writes a manifest of the given kind. See Protocol.Save.
func Save(kind Kind, doc Document, path string, opts ...Option) error {
	return save(kind, doc, path, opts)
}

// Load reads a manifest of the given kind. See Protocol.Load.
func Load(kind Kind, path string, opts ...Option) (Document, error) {
	return load(kind, path, opts)
}

// SaveAssemblyManifest writes a cloud assembly manifest.
func SaveAssemblyManifest(doc Document, path string, opts ...Option) error {
	return save(KindAssembly, doc, path, opts)
}

// LoadAssemblyManifest reads a cloud assembly manifest, rewriting legacy
// stack tags before validation.
func LoadAssemblyManifest(path string, opts ...Option) (Document, error) {
	return load(KindAssembly, path, opts)
}

// SaveAssetManifest writes an asset manifest.
func SaveAssetManifest(doc Document, path string, opts ...Option) error {
	return save(KindAssets, doc, path, opts)
}

// LoadAssetManifest reads an asset manifest.
func LoadAssetManifest(path string, opts ...Option) (Document, error) {
	return load(KindAssets, path, opts)
}

// SaveIntegManifest writes an integ manifest.
func SaveIntegManifest(doc Document, path string, opts ...Option) error {
	return save(KindInteg, doc, path, opts)
}

// LoadIntegManifest reads an integ manifest.
func LoadIntegManifest(path string, opts ...Option) (Document, error) {
	return load(KindInteg, path, opts)
}
