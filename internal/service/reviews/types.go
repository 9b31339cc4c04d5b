package reviews

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"regexp"
	"strconv"

	"restaurant-reviews/internal/model"
)

// Filter narrows a review listing. Zero values mean "no constraint".
type Filter struct {
	Restaurant string
	MinRating  *int
	UserId     string
	SortBy     string
	Order      string
}

// Payload is the client submitted review. Ratings are accepted as numbers or
// numeric strings; anything else becomes 0.
type Payload struct {
	Restaurant     string          `json:"restaurant" validate:"max=100"`
	Rating         LooseInt        `json:"rating" validate:"min=0,max=5"`
	FoodRating     LooseInt        `json:"foodRating" validate:"min=0,max=5"`
	ServiceRating  LooseInt        `json:"serviceRating" validate:"min=0,max=5"`
	AmbianceRating LooseInt        `json:"ambianceRating" validate:"min=0,max=5"`
	Review         string          `json:"review" validate:"max=1000"`
	UserId         string          `json:"userId" validate:"max=128"`
	UserName       string          `json:"userName" validate:"max=100"`
	Location       *model.Location `json:"location"`
}

// Photo is an uploaded file. Size is the number of bytes the client sent.
type Photo struct {
	Filename    string
	ContentType string
	Size        int64
	Body        io.Reader
}

type LooseInt int

var leadingInt = regexp.MustCompile(`^\s*[+-]?\d+`)

func (i *LooseInt) UnmarshalJSON(data []byte) error {
	*i = 0

	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var number float64
	if err := json.Unmarshal(data, &number); err == nil {
		if !math.IsNaN(number) && !math.IsInf(number, 0) && math.Abs(number) < math.MaxInt32 {
			*i = LooseInt(math.Trunc(number))
		}
		return nil
	}

	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		// objects, arrays and booleans
		return nil
	}

	if n, err := strconv.Atoi(leadingInt.FindString(text)); err == nil {
		*i = LooseInt(n)
	}
	return nil
}
