// Package ui renders console output: styled status lines, live run
// progress, the final summary table and desktop notifications.
package ui
