// Package services holds the school directory business logic: validating and
// storing new schools with their images, listing them, and keeping the image
// directory in step with the database.
package services
