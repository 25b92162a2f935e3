package catalog

import "time"

type Track struct {
	Id             string `gorm:"primaryKey;type:varchar(64)"`
	Title          string
	SmallThumbnail string
	BigThumbnail   string
	CreatedAt      time.Time
}

type Room struct {
	Id        string `gorm:"primaryKey;type:varchar(16)"`
	AdminId   string `gorm:"type:varchar(36)"`
	AdminName string
	CreatedAt time.Time
}

// Models lists the tables owned by this package for auto-migration.
func Models() []any {
	return []any{&Track{}, &Room{}}
}
