package document_store

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/serisow/ragone/ragtype"
)

// MemoryStore keeps the document registry in process memory. It backs tests
// and ephemeral mode, where no DATABASE_URL is configured.
type MemoryStore struct {
	mutex  sync.RWMutex
	nextID int
	docs   map[int]ragtype.Document
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		nextID: 1,
		docs:   make(map[int]ragtype.Document),
	}
}

func (s *MemoryStore) Insert(ctx context.Context, filename string) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	id := s.nextID
	s.nextID++
	s.docs[id] = ragtype.Document{
		ID:         id,
		Filename:   filename,
		Status:     ragtype.StatusPending,
		UploadedAt: time.Now(),
	}
	return id, nil
}

func (s *MemoryStore) SetStatus(ctx context.Context, documentID int, status ragtype.DocumentStatus) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	doc, ok := s.docs[documentID]
	if !ok {
		return &ragtype.NotFoundError{Kind: "document", ID: strconv.Itoa(documentID)}
	}
	doc.Status = status
	s.docs[documentID] = doc
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, documentID int) (bool, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, ok := s.docs[documentID]; !ok {
		return false, nil
	}
	delete(s.docs, documentID)
	return true, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]ragtype.Document, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	docs := make([]ragtype.Document, 0, len(s.docs))
	for _, doc := range s.docs {
		docs = append(docs, doc)
	}
	sort.Slice(docs, func(i, j int) bool {
		if docs[i].UploadedAt.Equal(docs[j].UploadedAt) {
			return docs[i].ID > docs[j].ID
		}
		return docs[i].UploadedAt.After(docs[j].UploadedAt)
	})
	return docs, nil
}

func (s *MemoryStore) Filename(ctx context.Context, documentID int) (string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	doc, ok := s.docs[documentID]
	if !ok {
		return "", &ragtype.NotFoundError{Kind: "document", ID: strconv.Itoa(documentID)}
	}
	return doc.Filename, nil
}
