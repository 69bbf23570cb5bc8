// Package inertiabase holds the wire-level page object shared between the
// renderer and the SSR client.
package inertiabase

// Page is the page object sent to the Inertia.js client, either as a JSON
// body (protocol requests) or embedded into the root HTML element.
//
// MergeProps, DeepMergeProps and DeferredProps are omitted when empty.
type Page struct {
	Props          map[string]any      `json:"props"`
	DeferredProps  map[string][]string `json:"deferredProps,omitempty"`
	Component      string              `json:"component"`
	URL            string              `json:"url"`
	Version        string              `json:"version"`
	MergeProps     []string            `json:"mergeProps,omitempty"`
	DeepMergeProps []string            `json:"deepMergeProps,omitempty"`
	EncryptHistory bool                `json:"encryptHistory"`
	ClearHistory   bool                `json:"clearHistory"`
}
