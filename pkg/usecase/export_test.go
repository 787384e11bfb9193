package usecase

// CountPages is exported for testing
var CountPages = countPages
