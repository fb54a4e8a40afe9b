package wizard

import (
	"reflect"

	"github.com/goliatone/go-wizard/payload"
	"github.com/goliatone/go-wizard/submit"
)

// pendingWork is a partial submission together with what the server already
// holds from it. A retry sends only what is still owed or changed since.
type pendingWork struct {
	partial submit.Partial
	work    payload.Result

	body     map[string]any
	uploaded map[string]bool
	deleted  map[string]bool
}

func newPendingWork() *pendingWork {
	return &pendingWork{uploaded: map[string]bool{}, deleted: map[string]bool{}}
}

// plan diffs the payload assembled from the current draft against what was
// persisted and returns the partial and work a retry runs. The save stage
// comes back as an update of the saved entity when the body changed.
func (p *pendingWork) plan(fresh payload.Result) (submit.Partial, payload.Result) {
	var (
		work   payload.Result
		stages []submit.Stage
	)
	if !reflect.DeepEqual(fresh.Body, p.body) {
		work.Body = fresh.Body
		stages = append(stages, submit.StageSave)
	}
	for _, m := range fresh.Upload {
		if !p.uploaded[m.URI] {
			work.Upload = append(work.Upload, m)
		}
	}
	if len(work.Upload) > 0 {
		stages = append(stages, submit.StageUpload)
	}
	for _, m := range fresh.Delete {
		if !p.deleted[m.URL] {
			work.Delete = append(work.Delete, m)
		}
	}
	if len(work.Delete) > 0 {
		stages = append(stages, submit.StageDelete)
	}

	next := p.partial
	next.Pending = stages
	return next, work
}

// track folds the stages a run completed into the persisted state. sent is
// the work the run was given; p.partial and p.work hold where it stopped.
func (p *pendingWork) track(sent payload.Result) {
	for _, stage := range p.partial.Completed {
		switch stage {
		case submit.StageSave:
			p.body = sent.Body
		case submit.StageUpload:
			for _, m := range sent.Upload {
				p.uploaded[m.URI] = true
			}
		case submit.StageDelete:
			for _, m := range sent.Delete {
				p.deleted[m.URL] = true
			}
		}
	}
	if p.partial.Stage != submit.StageDelete {
		return
	}
	owed := make(map[string]bool, len(p.work.Delete))
	for _, m := range p.work.Delete {
		owed[m.URL] = true
	}
	for _, m := range sent.Delete {
		if !owed[m.URL] {
			p.deleted[m.URL] = true
		}
	}
}
