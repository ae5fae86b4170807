package session

import "github.com/studycycle/backend/internal/models"

// SnapshotVersion is bumped whenever the persisted layout changes. There is
// no migration between versions: a blob with any other version is discarded
// wholesale on load.
const SnapshotVersion = 1

// Snapshot is the reduced projection of a session written to durable
// storage. The document's raw content is always zeroed — it is large and
// reconstructible only by re-upload — while every other field, including a
// completed test result and flashcard mastery flags, is preserved verbatim.
type Snapshot struct {
	Version    int                `json:"version"`
	Document   *models.Document   `json:"document,omitempty"`
	Questions  []models.Question  `json:"questions"`
	Answers    map[string]int     `json:"answers"`
	Result     *models.TestResult `json:"test_result,omitempty"`
	Flashcards []models.Flashcard `json:"flashcards"`
}

// Snapshot builds the persistence projection of the session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		Version:    SnapshotVersion,
		Questions:  append([]models.Question{}, s.Questions...),
		Answers:    make(map[string]int, len(s.Answers)),
		Flashcards: append([]models.Flashcard{}, s.Flashcards...),
	}
	for id, sel := range s.Answers {
		snap.Answers[id] = sel
	}
	if s.Document != nil {
		doc := *s.Document
		doc.Content = ""
		snap.Document = &doc
	}
	if s.Result != nil {
		result := *s.Result
		snap.Result = &result
	}
	return snap
}

// Restore rebuilds a session from a persisted snapshot. Returns false when
// the snapshot carries a different layout version, in which case the caller
// starts fresh.
func Restore(snap Snapshot) (*Session, bool) {
	if snap.Version != SnapshotVersion {
		return nil, false
	}

	s := New()
	s.Document = snap.Document
	if snap.Questions != nil {
		s.Questions = snap.Questions
	}
	for id, sel := range snap.Answers {
		s.Answers[id] = sel
	}
	s.Result = snap.Result
	if snap.Flashcards != nil {
		s.Flashcards = snap.Flashcards
	}
	return s, true
}
