package jobs

import (
	"testing"
	"time"
)

func TestStore_PutGet(t *testing.T) {
	s := NewStore[Job](time.Minute)
	j := NewJob()
	s.Put(j.ID, j)

	got, ok := s.Get(j.ID)
	if !ok {
		t.Fatal("job not found")
	}
	if got.ID != j.ID || got.State != StatePending {
		t.Errorf("got %+v", got)
	}

	if _, ok := s.Get("nope"); ok {
		t.Error("unknown ID should miss")
	}
}

func TestStore_GetReturnsCopy(t *testing.T) {
	s := NewStore[Job](time.Minute)
	j := NewJob()
	s.Put(j.ID, j)

	got, _ := s.Get(j.ID)
	got.State = StateFailed

	again, _ := s.Get(j.ID)
	if again.State != StatePending {
		t.Errorf("mutating the copy leaked into the store: %s", again.State)
	}
}

func TestStore_Update(t *testing.T) {
	s := NewStore[Job](time.Minute)
	j := NewJob()
	s.Put(j.ID, j)

	if !s.Update(j.ID, func(j *Job) {
		j.State = StateRunning
		j.Completed = 3
		j.Total = 5
	}) {
		t.Fatal("Update reported missing entry")
	}

	got, _ := s.Get(j.ID)
	if got.State != StateRunning || got.Completed != 3 || got.Total != 5 {
		t.Errorf("got %+v", got)
	}

	if s.Update("nope", func(*Job) {}) {
		t.Error("Update on unknown ID should report false")
	}
}

func TestStore_Cleanup(t *testing.T) {
	s := NewStore[Job](10 * time.Millisecond)
	j := NewJob()
	s.Put(j.ID, j)

	time.Sleep(20 * time.Millisecond)
	s.Cleanup()

	if s.Len() != 0 {
		t.Errorf("expected eviction, %d entries remain", s.Len())
	}
}

func TestJob_Settled(t *testing.T) {
	j := NewJob()
	if j.Settled() {
		t.Error("pending job should not be settled")
	}
	j.State = StateDone
	if !j.Settled() {
		t.Error("done job should be settled")
	}
}
