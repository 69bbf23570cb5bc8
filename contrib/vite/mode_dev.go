//go:build !production

package vite

const devMode = true
