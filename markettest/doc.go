/*
Package markettest provides mocks and test doubles for testing the
marketplace engine and its extensions.
*/
package markettest
