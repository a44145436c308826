package sitecontent

// Kind names a content collection.
type Kind string

const (
	KindNews        Kind = "news"
	KindProduct     Kind = "product"
	KindSlider      Kind = "slider"
	KindTeam        Kind = "team"
	KindUsageArea   Kind = "usage_area"
	KindFAQ         Kind = "faq"
	KindCertificate Kind = "certificate"
	KindGallery     Kind = "gallery"
	KindAIModel     Kind = "ai_model"
)

// AssetKind is the resource type an uploaded file is stored as.
type AssetKind string

const (
	AssetImage AssetKind = "image"
	AssetRaw   AssetKind = "raw"
)

// TextField describes a translatable text field.
type TextField struct {
	Name      string
	MaxLength int
	// Required means at least one language (or a legacy value) must be
	// non-empty on create.
	Required bool
}

// AttributeType selects how a non-translatable attribute is parsed.
type AttributeType int

const (
	AttrString AttributeType = iota
	// AttrUpload accepts either a multipart file or a URL string.
	AttrUpload
	// AttrObject accepts an arbitrary JSON object.
	AttrObject
)

// Attribute describes a non-translatable record attribute.
type Attribute struct {
	Name     string
	Type     AttributeType
	Required bool
	Default  string
	OneOf    []string
	// Validate is an extra validator tag applied to string values, e.g. "url".
	Validate string
	// FormFile is the multipart field carrying the upload. Defaults to Name.
	FormFile string
	Asset    AssetKind
}

// UploadField returns the multipart field name for an upload attribute.
func (a Attribute) UploadField() string {
	if a.FormFile != "" {
		return a.FormFile
	}
	return a.Name
}

// Schema describes one content collection.
type Schema struct {
	Kind Kind
	// Path is the collection's URL segment under /api.
	Path string
	// Label is used in response messages, e.g. "News created successfully".
	Label      string
	TextFields []TextField
	Attributes []Attribute
	// Folder groups uploaded assets in the blob store.
	Folder string
	// PublicList exposes the list endpoint without authentication.
	PublicList bool
	// TrackCreator stores the authenticated admin on create.
	TrackCreator bool
}

// TextFieldNames returns the base names of the translatable fields.
func (s Schema) TextFieldNames() []string {
	names := make([]string, 0, len(s.TextFields))
	for _, f := range s.TextFields {
		names = append(names, f.Name)
	}
	return names
}

// TextField looks up a text field by base name.
func (s Schema) TextField(name string) (TextField, bool) {
	for _, f := range s.TextFields {
		if f.Name == name {
			return f, true
		}
	}
	return TextField{}, false
}

func imageAttr(name string) Attribute {
	return Attribute{Name: name, Type: AttrUpload, Required: true, Asset: AssetImage}
}

var schemas = []Schema{
	{
		Kind:       KindNews,
		Path:       "news",
		Label:      "News",
		TextFields: []TextField{{Name: "title", MaxLength: 200, Required: true}, {Name: "description", MaxLength: 2000, Required: true}},
		Attributes: []Attribute{imageAttr("image")},
		Folder:     "news",
		PublicList: true,
	},
	{
		Kind:       KindProduct,
		Path:       "products",
		Label:      "Product",
		TextFields: []TextField{{Name: "title", MaxLength: 200}, {Name: "description", MaxLength: 2000, Required: true}},
		Attributes: []Attribute{imageAttr("image")},
		Folder:     "products",
		PublicList: true,
	},
	{
		Kind:       KindSlider,
		Path:       "sliders",
		Label:      "Slider",
		TextFields: []TextField{{Name: "title", MaxLength: 200, Required: true}, {Name: "paragraph", MaxLength: 1000, Required: true}},
		Attributes: []Attribute{imageAttr("image")},
		Folder:     "sliders",
		PublicList: true,
	},
	{
		Kind:       KindTeam,
		Path:       "team",
		Label:      "Team member",
		TextFields: []TextField{{Name: "title", MaxLength: 200, Required: true}, {Name: "description", MaxLength: 2000}},
		Attributes: []Attribute{imageAttr("image")},
		Folder:     "team",
		PublicList: true,
	},
	{
		Kind:       KindUsageArea,
		Path:       "usage-areas",
		Label:      "Usage area",
		TextFields: []TextField{{Name: "title", MaxLength: 200, Required: true}, {Name: "paragraph", MaxLength: 2000}},
		Attributes: []Attribute{imageAttr("image")},
		Folder:     "usage-areas",
		PublicList: true,
	},
	{
		Kind:       KindFAQ,
		Path:       "faqs",
		Label:      "FAQ",
		TextFields: []TextField{{Name: "question", MaxLength: 300, Required: true}, {Name: "answer", MaxLength: 2000, Required: true}},
		PublicList: true,
	},
	{
		Kind:       KindCertificate,
		Path:       "certificates",
		Label:      "Certificate",
		TextFields: []TextField{{Name: "name", MaxLength: 200, Required: true}},
		Attributes: []Attribute{
			imageAttr("logo"),
			{Name: "pdf_url", Type: AttrUpload, Required: true, FormFile: "pdf", Asset: AssetRaw},
		},
		Folder:     "certificates",
		PublicList: true,
	},
	{
		Kind:  KindGallery,
		Path:  "gallery",
		Label: "Gallery image",
		Attributes: []Attribute{
			imageAttr("image"),
			{Name: "alt", Default: "Gallery Image", Validate: "max=200"},
		},
		Folder:     "gallery",
		PublicList: true,
	},
	{
		Kind:  KindAIModel,
		Path:  "ai-models",
		Label: "AI model",
		Attributes: []Attribute{
			{Name: "name", Required: true, Validate: "max=200"},
			{Name: "description", Validate: "max=2000"},
			{Name: "model_type", Required: true, OneOf: []string{"text", "image", "video", "audio", "multimodal"}},
			{Name: "provider"},
			{Name: "api_endpoint", Validate: "omitempty,url"},
			{Name: "api_key"},
			{Name: "status", Default: "active", OneOf: []string{"active", "inactive", "maintenance"}},
			{Name: "config", Type: AttrObject},
		},
		TrackCreator: true,
	},
}

// Schemas returns every known collection.
func Schemas() []Schema {
	out := make([]Schema, len(schemas))
	copy(out, schemas)
	return out
}

// SchemaFor returns the schema for kind.
func SchemaFor(kind Kind) (Schema, bool) {
	for _, s := range schemas {
		if s.Kind == kind {
			return s, true
		}
	}
	return Schema{}, false
}
