package domain

// RoleUser is the role assigned to every account at sign-up.
const RoleUser = "USER"
