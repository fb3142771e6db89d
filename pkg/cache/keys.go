package cache

// LayoutKeyOpts are the inputs that change a layout besides the report.
type LayoutKeyOpts struct {
	Focus            string   `json:"focus"`
	ExcludedFields   []string `json:"excluded_fields"`
	ReservedChannels []string `json:"reserved_channels"`
	Instructions     string   `json:"instructions"`
	Engine           string   `json:"engine"`
	Spacing          string   `json:"spacing"`
}

// Keyer derives cache keys.
type Keyer interface {
	// ReportKey identifies a report by content.
	ReportKey(report []byte) string
	// LayoutKey identifies the layout of a report under opts.
	LayoutKey(reportHash string, opts LayoutKeyOpts) string
}

// DefaultKeyer hashes key components with SHA-256.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the default keyer.
func NewDefaultKeyer() Keyer { return DefaultKeyer{} }

func (DefaultKeyer) ReportKey(report []byte) string {
	return "report:" + Hash(report)
}

func (DefaultKeyer) LayoutKey(reportHash string, opts LayoutKeyOpts) string {
	return hashKey("layout", reportHash, opts)
}
