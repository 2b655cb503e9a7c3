package repository

import "github.com/user/taxsale-crawler/internal/entity"

// CountyRepository loads the counties to crawl.
type CountyRepository interface {
	Load() (*entity.CountyList, error)
}
