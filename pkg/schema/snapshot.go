package schema

const StoreSnapshotSchemaTextV1 = `{
	"type": "record",
	"namespace": "catalog",
	"name": "store_snapshot",
	"fields": [
		{"name": "id", "type": "string"},
		{"name": "name", "type": "string"},
		{"name": "url", "type": "string"},
		{"name": "offers", "type": {
			"type": "array",
			"items": {
				"type": "record",
				"name": "offer",
				"fields": [
					{"name": "product", "type": {
						"type": "record",
						"name": "product",
						"fields": [
							{"name": "id", "type": "string"},
							{"name": "category", "type": "string"},
							{"name": "ean", "type": "string"},
							{"name": "name", "type": "string"},
							{"name": "retail_price", "type": "double"}
						]
					}},
					{"name": "price", "type": "double"},
					{"name": "amount", "type": "int"}
				]
			}
		}}
	]
}`

type (
	StoreSnapshotV1 struct {
		ID     string    `avro:"id"`
		Name   string    `avro:"name"`
		URL    string    `avro:"url"`
		Offers []OfferV1 `avro:"offers"`
	}

	OfferV1 struct {
		Product ProductV1 `avro:"product"`
		Price   float64   `avro:"price"`
		Amount  int       `avro:"amount"`
	}

	ProductV1 struct {
		ID          string  `avro:"id"`
		Category    string  `avro:"category"`
		EAN         string  `avro:"ean"`
		Name        string  `avro:"name"`
		RetailPrice float64 `avro:"retail_price"`
	}
)
