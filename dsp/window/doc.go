// Package window generates cosine-sum analysis windows and applies them to
// sample blocks.
package window
