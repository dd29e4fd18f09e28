// Package mocks provides testify mocks for the store interfaces.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/vyrodovalexey/product-catalog/internal/model"
)

type MockProductStore struct {
	mock.Mock
}

func (m *MockProductStore) SaveProduct(ctx context.Context, product *model.Product) (*model.Product, error) {
	args := m.Called(ctx, product)
	if res := args.Get(0); res != nil {
		return res.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductStore) FindProductByID(ctx context.Context, id int64) (*model.Product, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*model.Product), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockProductStore) FindAllProducts(
	ctx context.Context, page model.PageRequest,
) (model.Page[model.Product], error) {
	args := m.Called(ctx, page)
	return args.Get(0).(model.Page[model.Product]), args.Error(1)
}

func (m *MockProductStore) FindProductsByNameContaining(
	ctx context.Context, substring string, page model.PageRequest,
) (model.Page[model.Product], error) {
	args := m.Called(ctx, substring, page)
	return args.Get(0).(model.Page[model.Product]), args.Error(1)
}

func (m *MockProductStore) FindProductsByNameContainingAndQuantityAtLeast(
	ctx context.Context, substring string, threshold int, page model.PageRequest,
) (model.Page[model.Product], error) {
	args := m.Called(ctx, substring, threshold, page)
	return args.Get(0).(model.Page[model.Product]), args.Error(1)
}

func (m *MockProductStore) DeleteProductByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockReviewStore struct {
	mock.Mock
}

func (m *MockReviewStore) SaveReview(ctx context.Context, review *model.Review) (*model.Review, error) {
	args := m.Called(ctx, review)
	if res := args.Get(0); res != nil {
		return res.(*model.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewStore) FindReviewByID(ctx context.Context, id int64) (*model.Review, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*model.Review), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockReviewStore) FindReviewsByProductID(
	ctx context.Context, productID int64, page model.PageRequest,
) (model.Page[model.Review], error) {
	args := m.Called(ctx, productID, page)
	return args.Get(0).(model.Page[model.Review]), args.Error(1)
}

func (m *MockReviewStore) DeleteReviewByID(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
