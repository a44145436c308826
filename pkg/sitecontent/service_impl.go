package sitecontent

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tendant/site-content/pkg/sitecontent/metrics"
	"github.com/tendant/site-content/pkg/sitecontent/validation"
)

// service implements the Service interface
type service struct {
	repository Repository
	translator Translator
	uploader   Uploader
	now        func() time.Time
}

// Option represents a functional option for configuring the service
type Option func(*service)

// WithRepository sets the repository for the service
func WithRepository(repo Repository) Option {
	return func(s *service) {
		s.repository = repo
	}
}

// WithTranslator enables auto-translation on writes
func WithTranslator(t Translator) Option {
	return func(s *service) {
		s.translator = t
	}
}

// WithUploader sets the asset uploader
func WithUploader(u Uploader) Option {
	return func(s *service) {
		s.uploader = u
	}
}

// WithClock overrides the time source used for timestamps
func WithClock(now func() time.Time) Option {
	return func(s *service) {
		s.now = now
	}
}

// New creates a new service instance with the given options
func New(options ...Option) (Service, error) {
	s := &service{now: time.Now}

	for _, option := range options {
		option(s)
	}

	if s.repository == nil {
		return nil, fmt.Errorf("repository is required")
	}

	return s, nil
}

func schemaOf(kind Kind) (Schema, error) {
	schema, ok := SchemaFor(kind)
	if !ok {
		return Schema{}, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return schema, nil
}

func (s *service) CreateRecord(ctx context.Context, req CreateRecordRequest) (*Record, error) {
	schema, err := schemaOf(req.Kind)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	record := &Record{
		ID:         uuid.New(),
		Kind:       req.Kind,
		Fields:     make(map[string]Field),
		Attributes: make(map[string]any),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if schema.TrackCreator {
		record.CreatedBy = req.CreatedBy
	}

	if err := s.apply(ctx, schema, record, req.Input, true); err != nil {
		return nil, err
	}

	if err := s.repository.CreateRecord(ctx, record); err != nil {
		metrics.RecordOperations.WithLabelValues(string(req.Kind), "create", "error").Inc()
		return nil, &RecordError{Kind: req.Kind, ID: record.ID, Op: "create", Err: err}
	}
	metrics.RecordOperations.WithLabelValues(string(req.Kind), "create", "ok").Inc()

	slog.Info("Record created", "kind", req.Kind, "id", record.ID)
	return record, nil
}

func (s *service) GetRecord(ctx context.Context, kind Kind, id uuid.UUID) (*Record, error) {
	if _, err := schemaOf(kind); err != nil {
		return nil, err
	}
	return s.repository.GetRecord(ctx, kind, id)
}

func (s *service) ListRecords(ctx context.Context, kind Kind, opts ListOptions) ([]*Record, error) {
	if _, err := schemaOf(kind); err != nil {
		return nil, err
	}
	return s.repository.ListRecords(ctx, kind, opts)
}

func (s *service) UpdateRecord(ctx context.Context, req UpdateRecordRequest) (*Record, error) {
	schema, err := schemaOf(req.Kind)
	if err != nil {
		return nil, err
	}

	record, err := s.repository.GetRecord(ctx, req.Kind, req.ID)
	if err != nil {
		return nil, err
	}

	if err := s.apply(ctx, schema, record, req.Input, false); err != nil {
		return nil, err
	}
	record.UpdatedAt = s.now().UTC()

	if err := s.repository.UpdateRecord(ctx, record); err != nil {
		metrics.RecordOperations.WithLabelValues(string(req.Kind), "update", "error").Inc()
		return nil, &RecordError{Kind: req.Kind, ID: record.ID, Op: "update", Err: err}
	}
	metrics.RecordOperations.WithLabelValues(string(req.Kind), "update", "ok").Inc()

	slog.Info("Record updated", "kind", req.Kind, "id", record.ID)
	return record, nil
}

func (s *service) DeleteRecord(ctx context.Context, kind Kind, id uuid.UUID) error {
	if _, err := schemaOf(kind); err != nil {
		return err
	}
	if err := s.repository.DeleteRecord(ctx, kind, id); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return err
		}
		metrics.RecordOperations.WithLabelValues(string(kind), "delete", "error").Inc()
		return &RecordError{Kind: kind, ID: id, Op: "delete", Err: err}
	}
	metrics.RecordOperations.WithLabelValues(string(kind), "delete", "ok").Inc()

	slog.Info("Record deleted", "kind", kind, "id", id)
	return nil
}

func (s *service) UploadAsset(ctx context.Context, req UploadRequest) (*Asset, error) {
	if s.uploader == nil {
		return nil, ErrNoBlobStore
	}
	return s.uploader.Upload(ctx, req)
}

// apply merges input into record. Only supplied keys are written; creating
// selects the stricter create-time rules (required fields, defaults and
// fallback-to-source for untranslated slots).
func (s *service) apply(ctx context.Context, schema Schema, record *Record, in RecordInput, creating bool) error {
	source := in.SourceLanguage
	if !source.IsValid() {
		source = DefaultLanguage
	}

	explicit := make(map[string]map[Language]bool)
	pending := make(map[string]string)

	for _, tf := range schema.TextFields {
		field := record.Fields[tf.Name]
		touched := false

		bare, hasBare := in.Text[tf.Name]
		text := ""
		if hasBare {
			text = strings.TrimSpace(bare)
			field.Set(source, text)
			touched = true
		}

		for _, lang := range Languages {
			v, ok := in.Text[LanguageKey(tf.Name, lang)]
			if !ok {
				continue
			}
			v = strings.TrimSpace(v)
			field.Set(lang, v)
			if explicit[tf.Name] == nil {
				explicit[tf.Name] = make(map[Language]bool)
			}
			explicit[tf.Name][lang] = true
			if lang == source {
				text = v
			}
			touched = true
		}

		if !touched {
			continue
		}
		if in.AutoTranslate && text != "" {
			pending[tf.Name] = text
		}
		record.Fields[tf.Name] = field
	}

	if len(pending) > 0 {
		s.fillTranslations(ctx, record, source, pending, explicit, creating)
	}

	if err := s.applyAttributes(schema, record, in.Attributes, creating); err != nil {
		return err
	}
	return validateRecord(schema, record, creating)
}

// fillTranslations writes translated variants for pending fields. Languages
// the caller set explicitly are left alone. A failed translation falls back
// to the source text on create; on update it only fills an empty slot.
func (s *service) fillTranslations(ctx context.Context, record *Record, source Language, pending map[string]string, explicit map[string]map[Language]bool, creating bool) {
	var result Translations
	if s.translator != nil {
		// Translation outlives a disconnected client; the HTTP client timeout bounds it.
		result = s.translator.TranslateFields(context.WithoutCancel(ctx), source, pending)
	} else {
		slog.Warn("Auto-translate requested but no translator is configured", "kind", record.Kind)
	}

	for name, text := range pending {
		field := record.Fields[name]
		for _, lang := range Languages {
			if lang == source || explicit[name][lang] {
				continue
			}
			translated := result[name][lang]
			switch {
			case translated != "":
				field.Set(lang, translated)
			case creating:
				field.Set(lang, text)
			default:
				if current, _ := field.Value(lang); current == "" {
					field.Set(lang, text)
				}
			}
			if translated == "" {
				slog.Warn("Translation unavailable", "kind", record.Kind, "field", name, "language", lang)
			}
		}
		record.Fields[name] = field
	}
}

func (s *service) applyAttributes(schema Schema, record *Record, attrs map[string]any, creating bool) error {
	for _, attr := range schema.Attributes {
		raw, ok := attrs[attr.Name]
		if !ok {
			if creating && attr.Default != "" {
				record.Attributes[attr.Name] = attr.Default
			}
			continue
		}

		switch attr.Type {
		case AttrObject:
			if raw == nil {
				delete(record.Attributes, attr.Name)
				continue
			}
			obj, ok := raw.(map[string]any)
			if !ok {
				return NewValidationError(attr.Name, "%s must be an object", validation.Label(attr.Name))
			}
			record.Attributes[attr.Name] = obj
		default:
			str, ok := raw.(string)
			if !ok {
				return NewValidationError(attr.Name, "%s must be a string", validation.Label(attr.Name))
			}
			str = strings.TrimSpace(str)
			if str == "" && attr.Default != "" {
				str = attr.Default
			}
			if str != "" {
				if err := checkAttribute(attr, str); err != nil {
					return err
				}
			}
			record.Attributes[attr.Name] = str
		}
	}
	return nil
}

func checkAttribute(attr Attribute, value string) error {
	if len(attr.OneOf) > 0 {
		if err := validation.Var(attr.Name, value, "oneof="+strings.Join(attr.OneOf, " ")); err != nil {
			return &ValidationError{Field: attr.Name, Message: err.Error()}
		}
	}
	if attr.Validate != "" {
		if err := validation.Var(attr.Name, value, attr.Validate); err != nil {
			return &ValidationError{Field: attr.Name, Message: err.Error()}
		}
	}
	return nil
}

func validateRecord(schema Schema, record *Record, creating bool) error {
	for _, tf := range schema.TextFields {
		field, ok := record.Fields[tf.Name]
		if tf.MaxLength > 0 && ok {
			tag := fmt.Sprintf("max=%d", tf.MaxLength)
			if err := validation.Var(tf.Name, field.Legacy, tag); err != nil {
				return &ValidationError{Field: tf.Name, Message: err.Error()}
			}
			for _, lang := range Languages {
				if err := validation.Var(tf.Name, field.Values[lang], tag); err != nil {
					return &ValidationError{Field: LanguageKey(tf.Name, lang), Message: err.Error()}
				}
			}
		}
		if creating && tf.Required {
			if _, v := FirstAvailable(field); v == "" {
				return NewValidationError(tf.Name, "%s is required", validation.Label(tf.Name))
			}
		}
	}

	if !creating {
		return nil
	}
	for _, attr := range schema.Attributes {
		if !attr.Required {
			continue
		}
		switch v := record.Attributes[attr.Name].(type) {
		case string:
			if v != "" {
				continue
			}
		case map[string]any:
			continue
		}
		return NewValidationError(attr.Name, "%s is required", validation.Label(attr.Name))
	}
	return nil
}
