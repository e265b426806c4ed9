package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNumberUnmarshal(t *testing.T) {
	cases := []struct {
		in   string
		want Number
		err  bool
	}{
		{`1500`, 1500, false},
		{`"1500"`, 1500, false},
		{`" 799.5 "`, 799.5, false},
		{`""`, 0, false},
		{`"abc"`, 0, true},
		{`true`, 0, true},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			var n Number
			err := json.Unmarshal([]byte(tc.in), &n)
			if tc.err {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, n)
		})
	}
}

func TestIntUnmarshal(t *testing.T) {
	var body struct {
		Age      Int  `json:"age"`
		Capacity *Int `json:"capacity"`
		Rating   *Int `json:"rating"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"age":"29","capacity":4,"rating":null}`), &body))
	assert.Equal(t, Int(29), body.Age)
	require.NotNil(t, body.Capacity)
	assert.Equal(t, Int(4), *body.Capacity)
	assert.Nil(t, body.Rating)

	var n Int
	assert.Error(t, json.Unmarshal([]byte(`"2.5"`), &n))
	assert.Error(t, json.Unmarshal([]byte(`"four"`), &n))
}

func TestPropertyPatchApply(t *testing.T) {
	p := Property{Title: "a", Status: StatusPending, IsBooked: true}
	capacity := Int(6)
	approved := StatusApproved
	review := &AdminReview{Rating: 4}

	PropertyPatch{
		PropertyUpdate: PropertyUpdate{Capacity: &capacity},
		Status:         &approved,
		AdminReview:    review,
	}.Apply(&p)
	review.Rating = 1

	assert.Equal(t, "a", p.Title)
	assert.Equal(t, 6, p.Capacity)
	assert.Equal(t, StatusApproved, p.Status)
	assert.True(t, p.IsBooked)
	assert.Equal(t, 4, p.AdminReview.Rating)
}
