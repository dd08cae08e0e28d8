// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"encoding/json"
	"fmt"
	"math"
)

// ImageType identifies which counting problem a classified image contains.
type ImageType string

const (
	ImageTypeTriangle  ImageType = "triangle"
	ImageTypeRectangle ImageType = "rectangle"
)

// Valid reports whether t is one of the shapes the explainer understands.
func (t ImageType) Valid() bool {
	return t == ImageTypeTriangle || t == ImageTypeRectangle
}

// UploadResponse is the JSON body returned by POST /upload. Every field is
// nullable: a failed classification is encoded as an object of nulls, and
// clients treat a missing or empty image_type as the failure signal.
type UploadResponse struct {
	ImageType   *ImageType `json:"image_type"`
	Answer      *float64   `json:"answer"`
	ArrInfo     LineCounts `json:"arr_info"`
	RetImageURL *string    `json:"ret_image_url"`
}

// NewUploadResponse builds a successful response.
func NewUploadResponse(kind ImageType, answer float64, counts []int, imageURL string) UploadResponse {
	return UploadResponse{
		ImageType:   &kind,
		Answer:      &answer,
		ArrInfo:     LineCounts(counts),
		RetImageURL: &imageURL,
	}
}

// FailedUpload returns the all-null response used for every failure.
func FailedUpload() UploadResponse {
	return UploadResponse{}
}

// Recognized reports whether image_type is present and non-empty.
func (r *UploadResponse) Recognized() bool {
	return r != nil && r.ImageType != nil && *r.ImageType != ""
}

// Kind returns the image type, or "" when absent.
func (r *UploadResponse) Kind() ImageType {
	if r == nil || r.ImageType == nil {
		return ""
	}
	return *r.ImageType
}

// AnswerValue returns the answer, or 0 when absent.
func (r *UploadResponse) AnswerValue() float64 {
	if r == nil || r.Answer == nil {
		return 0
	}
	return *r.Answer
}

// ImageURL returns ret_image_url, or "" when absent.
func (r *UploadResponse) ImageURL() string {
	if r == nil || r.RetImageURL == nil {
		return ""
	}
	return *r.RetImageURL
}

// LineCounts is the per-horizontal-line count list (arr_info). It accepts
// JSON numbers with a fractional zero part (4.0) since classifiers written
// in dynamic languages often emit floats.
type LineCounts []int

// UnmarshalJSON decodes a JSON array of integral numbers.
func (c *LineCounts) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = nil
		return nil
	}
	var raw []float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("arr_info: %w", err)
	}
	out := make(LineCounts, len(raw))
	for i, v := range raw {
		if v != math.Trunc(v) {
			return fmt.Errorf("arr_info[%d]: %v is not an integer", i, v)
		}
		out[i] = int(v)
	}
	*c = out
	return nil
}
