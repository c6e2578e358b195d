package model

import "time"

// Category groups products for browsing.  Category names are unique;
// attempts to create a duplicate surface as a conflict to the caller.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – unique category name.
//  Description – optional free-text description.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Category struct {
    ID          uint64    // categories.id
    Name        string    // categories.name
    Description *string   // categories.description (nullable)
    CreatedAt   time.Time // categories.created_at
    UpdatedAt   time.Time // categories.updated_at
}
