package csvcore

// NilStrategyKind selects how an absent value is recognized in a field.
type NilStrategyKind int

const (
	NilEmpty NilStrategyKind = iota
	NilNullLiteral
	NilCustom
)

// NilStrategy configures when a field string is treated as "no value".
type NilStrategy struct {
	Kind   NilStrategyKind
	Custom map[string]struct{} // used when Kind == NilCustom
}

// BoolStrategyKind selects the token vocabulary accepted for booleans.
type BoolStrategyKind int

const (
	BoolStandard BoolStrategyKind = iota
	BoolFlexible
	BoolCustom
)

// BoolStrategy configures boolean parsing.
type BoolStrategy struct {
	Kind      BoolStrategyKind
	TrueSet   map[string]struct{} // used when Kind == BoolCustom
	FalseSet  map[string]struct{}
}

// NumberStrategyKind selects how numeric strings are normalized before
// parsing.
type NumberStrategyKind int

const (
	NumberStandard NumberStrategyKind = iota
	NumberFlexible
	NumberLocale
	NumberParseStrategy
	NumberCurrency
)

// NumberStrategy configures integer/float parsing.
type NumberStrategy struct {
	Kind         NumberStrategyKind
	LocaleTag    string // BCP-47 tag, used by NumberLocale/NumberParseStrategy/NumberCurrency
	CurrencyCode string // ISO 4217 code, used by NumberCurrency (empty = infer from symbol)
}

// DateStrategyKind selects how date/time strings are parsed.
type DateStrategyKind int

const (
	DateDeferred DateStrategyKind = iota
	DateSecondsSinceEpoch
	DateMillisSinceEpoch
	DateISO8601
	DateFormatted
	DateCustom
	DateFlexible
	DateFlexibleHint
	DateLocaleAware
)

// DateParseFunc is the signature for DateCustom.
type DateParseFunc func(s string) (unixNano int64, err error)

// DateStrategy configures date/time parsing.
type DateStrategy struct {
	Kind      DateStrategyKind
	Pattern   string        // used by DateFormatted/DateFlexibleHint
	Custom    DateParseFunc // used by DateCustom
	LocaleTag string        // used by DateLocaleAware
	Style     string        // used by DateLocaleAware (e.g. "short", "long")
}

// KeyStrategyKind selects how header names are normalized for comparison
// against a destination field's name.
type KeyStrategyKind int

const (
	KeyIdentity KeyStrategyKind = iota
	KeyFromSnakeCase
	KeyFromKebabCase
	KeyFromScreamingSnake
	KeyFromPascal
	KeyCustom
)

// KeyTransformFunc is the signature for KeyCustom.
type KeyTransformFunc func(header string) string

// KeyStrategy configures header-to-field-name normalization.
type KeyStrategy struct {
	Kind   KeyStrategyKind
	Custom KeyTransformFunc
}

// NestedStrategyKind selects how a nested record field is decoded.
type NestedStrategyKind int

const (
	NestedFlatten NestedStrategyKind = iota
	NestedJSON
	NestedError
)

// NestedStrategy configures nested-record handling.
type NestedStrategy struct {
	Kind      NestedStrategyKind
	Separator string // used by NestedFlatten
}

// ParallelConfig tunes a parallel decode or encode pass.
type ParallelConfig struct {
	Parallelism     int
	ChunkSizeBytes  int64 // decode: minimum 64 KiB
	ChunkRows       int   // encode
	BufferBytes     int   // encode
	PreserveOrder   bool
}

// DefaultParallelConfig returns sensible defaults sized to the host's
// logical CPU count (see decode_parallel.go for the cpuid-backed sizing
// helper).
func DefaultParallelConfig() ParallelConfig {
	return ParallelConfig{
		Parallelism:    defaultParallelism(),
		ChunkSizeBytes: 64 * 1024,
		ChunkRows:      1024,
		BufferBytes:    64 * 1024,
		PreserveOrder:  true,
	}
}

// MemoryLimitConfig bounds in-flight row memory for the streaming decoder's
// backpressure controller.
type MemoryLimitConfig struct {
	BudgetBytes     int64
	EstimatedRowBytes int64
	BatchSize       int
	UseWatermarks   bool
	HighFrac        float64 // (0.5, 1.0]
	LowFrac         float64 // < HighFrac
}

func (m MemoryLimitConfig) maxRows() int64 {
	if m.EstimatedRowBytes <= 0 {
		return 0
	}
	return m.BudgetBytes / m.EstimatedRowBytes
}

func (m MemoryLimitConfig) highRows() int64 {
	return int64(float64(m.maxRows()) * m.HighFrac)
}

func (m MemoryLimitConfig) lowRows() int64 {
	return int64(float64(m.maxRows()) * m.LowFrac)
}

// DefaultMemoryLimitConfig returns a 64 MiB budget with watermarks enabled.
func DefaultMemoryLimitConfig() MemoryLimitConfig {
	return MemoryLimitConfig{
		BudgetBytes:       64 * 1024 * 1024,
		EstimatedRowBytes: 256,
		BatchSize:         256,
		UseWatermarks:     true,
		HighFrac:          0.9,
		LowFrac:           0.5,
	}
}

// DecodeConfig collects every decode-time option. Construct one with
// NewDecodeConfig and DecodeOption functions, following the functional
// options idiom tiendc-go-csvlib's DecodeConfig uses.
type DecodeConfig struct {
	Delimiter      byte
	HasHeaders     bool
	Mode           ParsingMode
	TrimWhitespace bool
	Encoding       sourceEncodingHint

	NilStrategy    NilStrategy
	BoolStrategy   BoolStrategy
	NumberStrategy NumberStrategy
	DateStrategy   DateStrategy
	KeyStrategy    KeyStrategy
	NestedStrategy NestedStrategy

	ColumnMapping map[string]string // header -> field name
	IndexMapping  map[int]string    // column index -> field name

	Parallel ParallelConfig
	Memory   MemoryLimitConfig
}

// sourceEncodingHint names a BOM/transcode choice without importing
// internal/source into the public API surface.
type sourceEncodingHint int

const (
	EncodingAuto sourceEncodingHint = iota
	EncodingUTF8
	EncodingUTF16LE
	EncodingUTF16BE
	EncodingUTF32LE
	EncodingUTF32BE
)

// DecodeOption mutates a DecodeConfig being built.
type DecodeOption func(*DecodeConfig)

// NewDecodeConfig builds a DecodeConfig from its defaults plus the given
// options, applied in order.
func NewDecodeConfig(opts ...DecodeOption) DecodeConfig {
	cfg := DecodeConfig{
		Delimiter:  ',',
		HasHeaders: true,
		Mode:       ParsingLenient,
		NilStrategy: NilStrategy{Kind: NilEmpty},
		Parallel:    DefaultParallelConfig(),
		Memory:      DefaultMemoryLimitConfig(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func WithDelimiter(b byte) DecodeOption { return func(c *DecodeConfig) { c.Delimiter = b } }
func WithHasHeaders(v bool) DecodeOption { return func(c *DecodeConfig) { c.HasHeaders = v } }
func WithParsingMode(m ParsingMode) DecodeOption { return func(c *DecodeConfig) { c.Mode = m } }
func WithTrimWhitespace(v bool) DecodeOption {
	return func(c *DecodeConfig) { c.TrimWhitespace = v }
}
func WithNilStrategy(s NilStrategy) DecodeOption { return func(c *DecodeConfig) { c.NilStrategy = s } }
func WithBoolStrategy(s BoolStrategy) DecodeOption {
	return func(c *DecodeConfig) { c.BoolStrategy = s }
}
func WithNumberStrategy(s NumberStrategy) DecodeOption {
	return func(c *DecodeConfig) { c.NumberStrategy = s }
}
func WithDateStrategy(s DateStrategy) DecodeOption {
	return func(c *DecodeConfig) { c.DateStrategy = s }
}
func WithKeyStrategy(s KeyStrategy) DecodeOption { return func(c *DecodeConfig) { c.KeyStrategy = s } }
func WithNestedStrategy(s NestedStrategy) DecodeOption {
	return func(c *DecodeConfig) { c.NestedStrategy = s }
}
func WithColumnMapping(m map[string]string) DecodeOption {
	return func(c *DecodeConfig) { c.ColumnMapping = m }
}
func WithIndexMapping(m map[int]string) DecodeOption {
	return func(c *DecodeConfig) { c.IndexMapping = m }
}
func WithParallelConfig(p ParallelConfig) DecodeOption { return func(c *DecodeConfig) { c.Parallel = p } }
func WithMemoryLimitConfig(m MemoryLimitConfig) DecodeOption {
	return func(c *DecodeConfig) { c.Memory = m }
}

// EncodeConfig collects every encode-time option, mirroring DecodeConfig's
// strategies for formatting instead of parsing.
type EncodeConfig struct {
	Delimiter  byte
	HasHeaders bool
	LineEnding LineEnding
	Encoding   sourceEncodingHint

	BoolStrategy   BoolStrategy
	NumberStrategy NumberStrategy
	DateStrategy   DateStrategy
	KeyStrategy    KeyStrategy

	Parallel ParallelConfig
}

// EncodeOption mutates an EncodeConfig being built.
type EncodeOption func(*EncodeConfig)

// NewEncodeConfig builds an EncodeConfig from its defaults plus the given
// options, applied in order.
func NewEncodeConfig(opts ...EncodeOption) EncodeConfig {
	cfg := EncodeConfig{
		Delimiter:  ',',
		HasHeaders: true,
		LineEnding: LF,
		Parallel:   DefaultParallelConfig(),
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

func WithEncodeDelimiter(b byte) EncodeOption { return func(c *EncodeConfig) { c.Delimiter = b } }
func WithEncodeHasHeaders(v bool) EncodeOption { return func(c *EncodeConfig) { c.HasHeaders = v } }
func WithLineEnding(le LineEnding) EncodeOption { return func(c *EncodeConfig) { c.LineEnding = le } }
func WithEncodeParallelConfig(p ParallelConfig) EncodeOption {
	return func(c *EncodeConfig) { c.Parallel = p }
}
