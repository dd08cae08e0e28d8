// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package models

import (
	"time"

	"github.com/google/uuid"
)

// Solve is one recorded classification, kept for the history listing.
// The uploaded image itself is never stored; ResultKey points at the
// annotated result image in the result store.
type Solve struct {
	ID        uuid.UUID `json:"id"`
	ImageType ImageType `json:"image_type"`
	Answer    float64   `json:"answer"`
	ArrInfo   []int     `json:"arr_info"`
	ResultKey string    `json:"result_key"`
	CreatedAt time.Time `json:"created_at"`
}
