// Package models lists the OpenAI chat models available to the configured
// API key, to help pick a model for the openai transliteration provider.
package models
