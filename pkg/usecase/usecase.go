package usecase

import (
	"github.com/secmon-lab/deckmemo/pkg/domain/interfaces"
)

type UseCases struct {
	repo      interfaces.Repository
	store     interfaces.ObjectStore
	extractor interfaces.Extractor
	memo      interfaces.MemoGenerator
	searcher  interfaces.Searcher
	Content   *ContentUseCase
}

type Option func(*UseCases)

func WithObjectStore(store interfaces.ObjectStore) Option {
	return func(uc *UseCases) {
		uc.store = store
	}
}

func WithExtractor(extractor interfaces.Extractor) Option {
	return func(uc *UseCases) {
		uc.extractor = extractor
	}
}

func WithMemoGenerator(generator interfaces.MemoGenerator) Option {
	return func(uc *UseCases) {
		uc.memo = generator
	}
}

func WithSearcher(searcher interfaces.Searcher) Option {
	return func(uc *UseCases) {
		uc.searcher = searcher
	}
}

func New(repo interfaces.Repository, opts ...Option) *UseCases {
	uc := &UseCases{
		repo: repo,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Content = NewContentUseCase(repo, uc.store, uc.extractor, uc.memo, uc.searcher)

	return uc
}
