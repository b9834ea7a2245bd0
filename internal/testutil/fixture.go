package testutil

import "google.golang.org/protobuf/types/descriptorpb"

// CatalogFiles returns a small three-file schema used across package tests:
//
//	acme/common/money.proto   package acme.common   message Money
//	acme/catalog/v1/catalog.proto  package acme.catalog.v1
//	    enum Availability, message Product (nested Dimensions, a map, a
//	    oneof), GetProductRequest, ListProductsRequest, service Catalog
//	    with one unary and one server-streaming method
//	ping.proto                no package            message Ping
//
// The catalog file carries comments on the enum, Product, its id field,
// the service and the unary method.
func CatalogFiles() []*descriptorpb.FileDescriptorProto {
	money := File("acme/common/money.proto", "acme.common",
		Message("Money",
			Field("currency", 1, TypeString),
			Field("units", 2, TypeInt64),
			Field("nanos", 3, TypeInt32),
		),
	)

	product := Message("Product",
		Field("id", 1, TypeString),
		Field("name", 2, TypeString),
		RefField("price", 3, TypeMessage, ".acme.common.Money"),
		Repeated(Field("tags", 4, TypeString)),
		RefField("availability", 5, TypeEnum, ".acme.catalog.v1.Availability"),
		WithJSONName(Repeated(RefField("attributes", 6, TypeMessage, ".acme.catalog.v1.Product.AttributesEntry")), "attributes"),
		InOneof(Field("percent_off", 7, TypeInt32), 0),
		InOneof(Field("amount_off", 8, TypeInt64), 0),
		RefField("dimensions", 9, TypeMessage, ".acme.catalog.v1.Product.Dimensions"),
		Message("Dimensions",
			Field("width", 1, TypeDouble),
			Field("height", 2, TypeDouble),
		),
		MapEntry("AttributesEntry", Field("", 0, TypeString), Field("", 0, TypeString)),
		Oneof("discount"),
	)

	catalog := File("acme/catalog/v1/catalog.proto", "acme.catalog.v1",
		Enum("Availability", "AVAILABILITY_UNKNOWN", "IN_STOCK", "BACKORDER"),
		product,
		Message("GetProductRequest", Field("id", 1, TypeString)),
		Message("ListProductsRequest",
			Field("page_size", 1, TypeInt32),
			Field("page_token", 2, TypeString),
		),
		Service("Catalog",
			Method("GetProduct", ".acme.catalog.v1.GetProductRequest", ".acme.catalog.v1.Product", false, false),
			Method("WatchProducts", ".acme.catalog.v1.ListProductsRequest", ".acme.catalog.v1.Product", false, true),
		),
		Location([]int32{5, 0}, " Stock state of a product.\n", nil, ""),
		Location([]int32{4, 0}, " A product in the catalog.\n", []string{" Catalog types.\n"}, ""),
		Location([]int32{4, 0, 2, 0}, "", nil, " Stable identifier.\n"),
		Location([]int32{6, 0}, " Read access to the catalog.\n", nil, ""),
		Location([]int32{6, 0, 2, 0}, " Fetch one product.\n", nil, ""),
	)
	catalog.Dependency = []string{"acme/common/money.proto"}

	ping := File("ping.proto", "", Message("Ping"))

	return []*descriptorpb.FileDescriptorProto{money, catalog, ping}
}
