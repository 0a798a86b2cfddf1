package client

import (
	"encoding/base64"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophnotes/internal/client/models"
	"google.golang.org/protobuf/types/known/structpb"
)

// Record field names on the wire.
const (
	fieldID          = "id"
	fieldName        = "name"
	fieldDescription = "description"
	fieldImage       = "image"
	fieldCreatedAt   = "createdAt"
	fieldUpdatedAt   = "updatedAt"

	fieldUsername     = "username"
	fieldSalt         = "salt"
	fieldVerifier     = "verifier"
	fieldAccessToken  = "access_token"
	fieldRefreshToken = "refresh_token"
)

func noteToStruct(d models.NoteData) (*structpb.Struct, error) {
	fields := map[string]any{
		fieldID:   d.ID,
		fieldName: d.Name,
	}
	if d.Description != nil {
		fields[fieldDescription] = *d.Description
	}
	if d.Image != nil {
		fields[fieldImage] = *d.Image
	}
	if d.CreatedAt != nil {
		fields[fieldCreatedAt] = d.CreatedAt.UTC().Format(time.RFC3339Nano)
	}
	if d.UpdatedAt != nil {
		fields[fieldUpdatedAt] = d.UpdatedAt.UTC().Format(time.RFC3339Nano)
	}
	return structpb.NewStruct(fields)
}

func noteFromStruct(s *structpb.Struct) (models.NoteData, error) {
	f := s.GetFields()

	d := models.NoteData{
		ID:   f[fieldID].GetStringValue(),
		Name: f[fieldName].GetStringValue(),
	}
	if d.ID == "" {
		return models.NoteData{}, fmt.Errorf("%w: record without id", ErrMalformedResponse)
	}

	d.Description = optionalString(f, fieldDescription)
	d.Image = optionalString(f, fieldImage)

	var err error
	if d.CreatedAt, err = optionalTime(f, fieldCreatedAt); err != nil {
		return models.NoteData{}, err
	}
	if d.UpdatedAt, err = optionalTime(f, fieldUpdatedAt); err != nil {
		return models.NoteData{}, err
	}
	return d, nil
}

func notesFromList(l *structpb.ListValue) ([]models.NoteData, error) {
	values := l.GetValues()
	result := make([]models.NoteData, 0, len(values))
	for i, v := range values {
		s := v.GetStructValue()
		if s == nil {
			return nil, fmt.Errorf("%w: item %d is not a record", ErrMalformedResponse, i)
		}
		d, err := noteFromStruct(s)
		if err != nil {
			return nil, err
		}
		result = append(result, d)
	}
	return result, nil
}

func tokensFromStruct(s *structpb.Struct) (Tokens, error) {
	f := s.GetFields()
	t := Tokens{
		Access:  f[fieldAccessToken].GetStringValue(),
		Refresh: f[fieldRefreshToken].GetStringValue(),
	}
	if t.Access == "" {
		return Tokens{}, fmt.Errorf("%w: missing access token", ErrMalformedResponse)
	}
	return t, nil
}

func encodeBytes(b []byte) string {
	return base64.StdEncoding.EncodeToString(b)
}

// optionalString treats a missing key and an explicit null alike.
func optionalString(f map[string]*structpb.Value, key string) *string {
	v, ok := f[key]
	if !ok {
		return nil
	}
	if _, isNull := v.GetKind().(*structpb.Value_NullValue); isNull {
		return nil
	}
	s := v.GetStringValue()
	return &s
}

func optionalTime(f map[string]*structpb.Value, key string) (*time.Time, error) {
	raw := optionalString(f, key)
	if raw == nil || *raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339Nano, *raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrMalformedResponse, key, err)
	}
	return &t, nil
}
