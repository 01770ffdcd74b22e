package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"fmt"

	"github.com/strata-ml/strata/model"
)

// Bundle is the fitted-estimator cache entry: the estimator together with
// the (test range, column) slice of the prediction matrix it wrote, if any.
type Bundle struct {
	Name      model.ID
	Estimator model.Estimator
	Test      *model.Range
	Col       int
}

// Pipeline is the fitted, ordered transformer list persisted per case.
type Pipeline []model.Named[model.Transformer]

// SaveTransformers serializes a case's fitted transformer list into the
// store. Concrete transformer types must be registered via model.Register.
func SaveTransformers(ctx context.Context, s Store, caseID model.ID, list Pipeline) error {
	data, err := encode(list)
	if err != nil {
		return fmt.Errorf("encode transformers for case %q: %w", caseID, err)
	}
	return s.Put(ctx, TransformersKey(caseID), data)
}

// LoadTransformers reads back a case's fitted transformer list.
func LoadTransformers(ctx context.Context, s Store, caseID model.ID) (Pipeline, error) {
	data, err := s.Get(ctx, TransformersKey(caseID))
	if err != nil {
		return nil, err
	}
	return DecodeTransformers(data)
}

// DecodeTransformers deserializes a transformer list entry.
func DecodeTransformers(data []byte) (Pipeline, error) {
	var list Pipeline
	if err := decode(data, &list); err != nil {
		return nil, fmt.Errorf("decode transformers: %w", err)
	}
	return list, nil
}

// SaveBundle serializes one fitted estimator bundle into the store.
func SaveBundle(ctx context.Context, s Store, caseID model.ID, b Bundle) error {
	data, err := encode(b)
	if err != nil {
		return fmt.Errorf("encode bundle %q/%q: %w", caseID, b.Name, err)
	}
	return s.Put(ctx, EstimatorKey(caseID, b.Name), data)
}

// LoadBundle reads back one fitted estimator bundle.
func LoadBundle(ctx context.Context, s Store, caseID, name model.ID) (Bundle, error) {
	data, err := s.Get(ctx, EstimatorKey(caseID, name))
	if err != nil {
		return Bundle{}, err
	}
	return DecodeBundle(data)
}

// DecodeBundle deserializes an estimator bundle entry.
func DecodeBundle(data []byte) (Bundle, error) {
	var b Bundle
	if err := decode(data, &b); err != nil {
		return Bundle{}, fmt.Errorf("decode bundle: %w", err)
	}
	return b, nil
}

func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decode(data []byte, v any) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
