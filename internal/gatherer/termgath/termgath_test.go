package termgath

import (
	"sync"
	"testing"
	"time"

	"github.com/programme-lv/ranker/internal/gatherer"
)

// The terminal gatherer is called from many worker goroutines at once; it
// must survive that without racing.
func TestConcurrentEvents(t *testing.T) {
	g := New()
	g.StartRun(100)

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			g.StartTask(i)
			g.FinishTask(i, time.Millisecond)
		}()
	}
	wg.Wait()

	g.FailTask(0, errFake)
	g.FinishRun(gatherer.Summary{Processed: 99, Failed: 1})
}

type fakeErr struct{}

func (fakeErr) Error() string { return "fake" }

var errFake = fakeErr{}
