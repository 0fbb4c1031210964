package mocks

//go:generate mockgen -destination=logger_mock.go -package=mocks treesync/internal/log Logger
