package dataset

import (
	"errors"
	"fmt"
	"math/rand"
)

var (
	NotEnoughSongsErr = errors.New("not enough songs")
)

// GrabBySong draws whole songs at random from the song list until at least n samples
// are collected, and returns exactly n sample indices.
// If songList is nil all the songs are eligible.
// The remaining song list excludes the songs that were drawn.
func GrabBySong(rng *rand.Rand, songIDs []int, n int, songList []int) ([]int, []int, error) {
	if n <= 0 {
		return nil, nil, fmt.Errorf("cannot grab %d samples", n)
	}

	if songList == nil {
		songList = Songs(songIDs)
	}
	remaining := append([]int{}, songList...)

	samples := make(map[int][]int)
	for i, id := range songIDs {
		samples[id] = append(samples[id], i)
	}

	ids := make([]int, 0, n)
	for len(ids) < n {
		if len(remaining) == 0 {
			return nil, nil, fmt.Errorf("collected %d of %d samples from %d songs: %w",
				len(ids), n, len(songList), NotEnoughSongsErr)
		}
		i := rng.Intn(len(remaining))
		song := remaining[i]
		remaining = append(remaining[:i], remaining[i+1:]...)
		ids = append(ids, samples[song]...)
	}

	return ids[:n], remaining, nil
}
