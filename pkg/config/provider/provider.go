// Copyright 2025 Kadir Pekel
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package provider abstracts where configuration bytes come from.
//
// AgeRun only ever reads configuration from the local filesystem, so
// this is trimmed to a single backend compared to the framework this
// was lifted from; the Provider interface is kept so pkg/config does
// not need to know about fsnotify directly.
package provider

import "context"

// Type identifies a provider implementation.
type Type string

// TypeFile is the only supported provider in AgeRun.
const TypeFile Type = "file"

// ProviderConfig selects and configures a Provider.
type ProviderConfig struct {
	Type Type
	Path string
}

// Provider supplies raw configuration bytes and optional change notifications.
type Provider interface {
	// Type reports which backend this provider implements.
	Type() Type

	// Load reads the current configuration bytes.
	Load(ctx context.Context) ([]byte, error)

	// Watch returns a channel that receives a value whenever the
	// configuration changes, or nil if this provider cannot watch.
	Watch(ctx context.Context) (<-chan struct{}, error)

	// Close releases resources held by the provider.
	Close() error
}

// New builds a Provider for the given configuration.
func New(cfg ProviderConfig) (Provider, error) {
	switch cfg.Type {
	case TypeFile, "":
		return NewFileProvider(cfg.Path)
	default:
		return nil, &UnsupportedTypeError{Type: cfg.Type}
	}
}

// UnsupportedTypeError is returned by New for an unrecognized provider type.
type UnsupportedTypeError struct {
	Type Type
}

func (e *UnsupportedTypeError) Error() string {
	return "config: unsupported provider type " + string(e.Type)
}
