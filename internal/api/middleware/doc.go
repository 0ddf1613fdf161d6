// Package middleware holds gin middleware for the admin API.
package middleware
