// Package api translates HTTP requests into calls on the application
// services and renders their results. It owns request decoding, payload
// validation, error-to-status mapping and response shaping; business rules
// live in the service layer.
package api
