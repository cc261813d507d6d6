package trailer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/moodflix/moodflix/pkg/youtube"
)

func TestFirstOfficial(t *testing.T) {
	tests := []struct {
		name       string
		candidates []youtube.Video
		want       int
	}{
		{
			name: "empty",
			want: -1,
		},
		{
			name: "first qualifying wins over rank one",
			candidates: []youtube.Video{
				{ID: "a", Title: "Inception ending explained", ChannelTitle: "Film Theory"},
				{ID: "b", Title: "Inception trailer reaction", ChannelTitle: "Reacts"},
				{ID: "c", Title: "INCEPTION - Official Trailer (HD)", ChannelTitle: "Some Uploader"},
				{ID: "d", Title: "Inception Official Trailer #2", ChannelTitle: "Warner Bros. Official"},
				{ID: "e", Title: "Inception", ChannelTitle: "Movieclips Trailers"},
			},
			want: 2,
		},
		{
			name: "official channel qualifies",
			candidates: []youtube.Video{
				{ID: "a", Title: "Inception clip", ChannelTitle: "Fan"},
				{ID: "b", Title: "Inception (2010)", ChannelTitle: "Warner Bros. Official"},
			},
			want: 1,
		},
		{
			name: "aggregator channel qualifies",
			candidates: []youtube.Video{
				{ID: "a", Title: "Inception clip", ChannelTitle: "Fan"},
				{ID: "b", Title: "Inception (2010)", ChannelTitle: "Rotten Tomatoes Trailers"},
				{ID: "c", Title: "Inception", ChannelTitle: "Movieclips"},
			},
			want: 1,
		},
		{
			name: "official without trailer in title does not qualify",
			candidates: []youtube.Video{
				{ID: "a", Title: "Inception official soundtrack", ChannelTitle: "Fan"},
				{ID: "b", Title: "Inception trailer", ChannelTitle: "Fan"},
			},
			want: 0,
		},
		{
			name: "none qualify falls back to first",
			candidates: []youtube.Video{
				{ID: "a", Title: "x", ChannelTitle: "y"},
				{ID: "b", Title: "z", ChannelTitle: "w"},
			},
			want: 0,
		},
		{
			name: "accents and case are folded",
			candidates: []youtube.Video{
				{ID: "a", Title: "Amélie", ChannelTitle: "Fan"},
				{ID: "b", Title: "Amélie - ÓFFICIAL TRÁILER", ChannelTitle: "Fan"},
			},
			want: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FirstOfficial(tt.candidates))
		})
	}
}
