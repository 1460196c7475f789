package models

type Agent struct {
	Name        string
	DisplayName string
}
