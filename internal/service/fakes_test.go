package service

import (
	"errors"
	"sort"

	"github.com/okoval/giftbox/internal/model"
	"github.com/okoval/giftbox/internal/repository"
)

// fakeGiftRepo is an in-memory GiftRepository for service tests.
type fakeGiftRepo struct {
	gifts  map[string]*model.Gift
	photos map[string]*model.MemoryPhoto

	createCalls int
	failCreate  error
}

func newFakeGiftRepo() *fakeGiftRepo {
	return &fakeGiftRepo{
		gifts:  map[string]*model.Gift{},
		photos: map[string]*model.MemoryPhoto{},
	}
}

func (f *fakeGiftRepo) Create(gift *model.Gift) error {
	f.createCalls++
	if f.failCreate != nil {
		return f.failCreate
	}
	for _, g := range f.gifts {
		if g.Number == gift.Number {
			return repository.ErrNumberConflict
		}
	}
	copied := *gift
	f.gifts[gift.ID] = &copied
	return nil
}

func (f *fakeGiftRepo) ByID(giftID string) (*model.Gift, error) {
	g, ok := f.gifts[giftID]
	if !ok {
		return nil, repository.ErrGiftNotFound
	}
	copied := *g
	copied.MemoryPhoto = f.photos[giftID]
	return &copied, nil
}

func (f *fakeGiftRepo) ByNumber(number int) (*model.Gift, error) {
	for id, g := range f.gifts {
		if g.Number == number {
			return f.ByID(id)
		}
	}
	return nil, repository.ErrGiftNotFound
}

func (f *fakeGiftRepo) Gifts(sortBy string) ([]*model.Gift, error) {
	out := make([]*model.Gift, 0, len(f.gifts))
	for id := range f.gifts {
		g, _ := f.ByID(id)
		out = append(out, g)
	}
	switch sortBy {
	case repository.GiftSortNumber:
		sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	default:
		sort.Slice(out, func(i, j int) bool {
			if out[i].OpenDate.Equal(out[j].OpenDate) {
				return out[i].Number < out[j].Number
			}
			return out[i].OpenDate.Before(out[j].OpenDate)
		})
	}
	return out, nil
}

func (f *fakeGiftRepo) Update(gift *model.Gift) error {
	_, ok := f.gifts[gift.ID]
	if !ok {
		return repository.ErrGiftNotFound
	}
	for id, g := range f.gifts {
		if id != gift.ID && g.Number == gift.Number {
			return repository.ErrNumberConflict
		}
	}
	copied := *gift
	f.gifts[gift.ID] = &copied
	return nil
}

func (f *fakeGiftRepo) Delete(giftID string) error {
	_, ok := f.gifts[giftID]
	if !ok {
		return repository.ErrGiftNotFound
	}
	delete(f.gifts, giftID)
	delete(f.photos, giftID)
	return nil
}

func (f *fakeGiftRepo) SetMemoryPhoto(photo *model.MemoryPhoto) error {
	copied := *photo
	f.photos[photo.GiftID] = &copied
	return nil
}

func (f *fakeGiftRepo) DeleteMemoryPhoto(giftID string) error {
	delete(f.photos, giftID)
	return nil
}

// fakeContentRepo is an in-memory ContentRepository with injectable
// save failure.
type fakeContentRepo struct {
	docs       map[string]*model.ContentDocument
	failSave   error
	failDelete error
}

func newFakeContentRepo() *fakeContentRepo {
	return &fakeContentRepo{docs: map[string]*model.ContentDocument{}}
}

func (f *fakeContentRepo) ByGiftID(giftID string) (*model.ContentDocument, error) {
	doc, ok := f.docs[giftID]
	if !ok {
		return nil, repository.ErrContentNotFound
	}
	return doc, nil
}

func (f *fakeContentRepo) Save(giftID string, doc *model.ContentDocument) error {
	if f.failSave != nil {
		return f.failSave
	}
	f.docs[giftID] = doc
	return nil
}

func (f *fakeContentRepo) Delete(giftID string) error {
	if f.failDelete != nil {
		return f.failDelete
	}
	delete(f.docs, giftID)
	return nil
}

// spyInvalidator records render cache invalidations.
type spyInvalidator struct {
	calls int
}

func (s *spyInvalidator) InvalidateCache() {
	s.calls++
}

var (
	errSaveFailed = errors.New("save failed")

	_ repository.GiftRepository    = (*fakeGiftRepo)(nil)
	_ repository.ContentRepository = (*fakeContentRepo)(nil)
)
