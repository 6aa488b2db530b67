// File: internal/mocks/mocks.go

// Package mocks provides testify-based doubles for the browser capability
// interfaces so the detection pipeline can be tested without a real browser.
package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/hcastellani/roost-cli/api/schemas"
)

// -- PageContext Mock --

// MockPageContext mocks schemas.PageContext.
type MockPageContext struct {
	mock.Mock
}

var _ schemas.PageContext = (*MockPageContext)(nil)

func (m *MockPageContext) ID() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockPageContext) Navigate(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockPageContext) CurrentURL(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

func (m *MockPageContext) IsVisible(ctx context.Context, selector string, timeout time.Duration) bool {
	args := m.Called(ctx, selector, timeout)
	return args.Bool(0)
}

func (m *MockPageContext) Text(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	args := m.Called(ctx, selector, timeout)
	return args.String(0), args.Error(1)
}

func (m *MockPageContext) InputValue(ctx context.Context, selector string, timeout time.Duration) (string, error) {
	args := m.Called(ctx, selector, timeout)
	return args.String(0), args.Error(1)
}

func (m *MockPageContext) Click(ctx context.Context, selector string, timeout time.Duration) error {
	args := m.Called(ctx, selector, timeout)
	return args.Error(0)
}

func (m *MockPageContext) Cookies(ctx context.Context) ([]schemas.Cookie, error) {
	args := m.Called(ctx)
	if cookies, ok := args.Get(0).([]schemas.Cookie); ok {
		return cookies, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPageContext) SetCookies(ctx context.Context, cookies []schemas.Cookie) error {
	args := m.Called(ctx, cookies)
	return args.Error(0)
}

func (m *MockPageContext) StorageKeys(ctx context.Context, kind string) ([]string, error) {
	args := m.Called(ctx, kind)
	if keys, ok := args.Get(0).([]string); ok {
		return keys, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPageContext) Close(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// -- ContextFactory Mock --

// MockContextFactory mocks schemas.ContextFactory.
type MockContextFactory struct {
	mock.Mock
}

var _ schemas.ContextFactory = (*MockContextFactory)(nil)

func (m *MockContextFactory) NewPageContext(ctx context.Context) (schemas.PageContext, error) {
	args := m.Called(ctx)
	if page, ok := args.Get(0).(schemas.PageContext); ok {
		return page, args.Error(1)
	}
	return nil, args.Error(1)
}

// ContextFactoryFunc adapts a function to schemas.ContextFactory. Useful when
// a test needs a fresh mock page per acquisition.
type ContextFactoryFunc func(ctx context.Context) (schemas.PageContext, error)

func (f ContextFactoryFunc) NewPageContext(ctx context.Context) (schemas.PageContext, error) {
	return f(ctx)
}
