package store

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/rs/zerolog"

	"github.com/ppiankov/flow/internal/model"
)

// Store loads and saves the document snapshot. Both directions are best
// effort: failures are logged and reported as "nothing to restore" or
// "save skipped", never returned.
type Store struct {
	kv     KV
	key    string
	logger zerolog.Logger
}

// New creates a Store writing state under key
func New(kv KV, key string, logger zerolog.Logger) *Store {
	return &Store{kv: kv, key: key, logger: logger}
}

// Load returns the stored snapshot, or false when there is nothing usable.
// A payload whose text is not a string or whose annotations are not a list
// is treated as absent.
func (s *Store) Load() (*model.StoredState, bool) {
	raw, ok, err := s.kv.Get(s.key)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("load state failed")
		return nil, false
	}
	if !ok || len(raw) == 0 {
		return nil, false
	}

	state, err := decodeState(raw)
	if err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("stored state ignored")
		return nil, false
	}
	return state, true
}

// Save writes the snapshot; errors are logged and swallowed
func (s *Store) Save(state model.StoredState) {
	if state.Annotations == nil {
		state.Annotations = []model.Annotation{}
	}
	data, err := json.Marshal(state)
	if err != nil {
		s.logger.Warn().Err(err).Msg("encode state failed")
		return
	}
	if err := s.kv.Set(s.key, data); err != nil {
		s.logger.Warn().Err(err).Str("key", s.key).Msg("save state failed")
	}
}

// Close releases the underlying collaborator
func (s *Store) Close() error {
	return s.kv.Close()
}

var (
	errTextShape        = errors.New("text is not a string")
	errAnnotationsShape = errors.New("annotations is not a list")
)

func decodeState(raw []byte) (*model.StoredState, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}

	var text string
	rawText := bytes.TrimSpace(fields["text"])
	if len(rawText) == 0 || rawText[0] != '"' {
		return nil, errTextShape
	}
	if err := json.Unmarshal(rawText, &text); err != nil {
		return nil, errTextShape
	}

	rawAnns := bytes.TrimSpace(fields["annotations"])
	if len(rawAnns) == 0 || rawAnns[0] != '[' {
		return nil, errAnnotationsShape
	}
	var list []json.RawMessage
	if err := json.Unmarshal(rawAnns, &list); err != nil {
		return nil, errAnnotationsShape
	}

	annotations := make([]model.Annotation, 0, len(list))
	for _, item := range list {
		var a model.Annotation
		if err := json.Unmarshal(item, &a); err != nil {
			return nil, err
		}
		annotations = append(annotations, a)
	}

	return &model.StoredState{Text: text, Annotations: annotations}, nil
}
