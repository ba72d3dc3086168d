package store

import "luminapos/backend/internal/domain"

// SeedTemplate is the hardcoded demo catalog, the last fallback tier when
// neither the cloud template nor the cached copy is available.
func SeedTemplate() []domain.Product {
	return []domain.Product{
		{ID: "1", Name: "Inca Kola 600ml", Price: 3.50, Category: "Bebidas", Stock: 45, Barcode: "77501000"},
		{ID: "2", Name: "Coca Cola 600ml", Price: 3.50, Category: "Bebidas", Stock: 50, Barcode: "77501001"},
		{ID: "3", Name: "Agua San Mateo 1L", Price: 2.50, Category: "Bebidas", Stock: 24, Barcode: "77502000"},
		{ID: "4", Name: "Cerveza Pilsen 650ml", Price: 7.00, Category: "Bebidas", Stock: 120, Barcode: "77503000"},
		{ID: "5", Name: "Sporade Tropical", Price: 2.80, Category: "Bebidas", Stock: 15, Barcode: "77504000"},
		{ID: "6", Name: "Papas Lays Clásicas", Price: 2.00, Category: "Snacks", Stock: 30, Barcode: "75010001"},
		{ID: "7", Name: "Doritos Queso", Price: 2.20, Category: "Snacks", Stock: 25, Barcode: "75010002"},
		{ID: "8", Name: "Galleta Oreo Paquete", Price: 1.50, Category: "Snacks", Stock: 60, Barcode: "76223000"},
		{ID: "9", Name: "Chocman", Price: 1.20, Category: "Snacks", Stock: 40, Barcode: "77505000"},
		{ID: "10", Name: "Arroz Costeño 750g", Price: 4.80, Category: "Alimentos", Stock: 20, Barcode: "77506000"},
		{ID: "11", Name: "Aceite Primor 1L", Price: 11.50, Category: "Alimentos", Stock: 18, Barcode: "77507000"},
		{ID: "12", Name: "Leche Gloria Azul", Price: 4.20, Category: "Alimentos", Stock: 36, Barcode: "77508000"},
		{ID: "13", Name: "Atún Florida Filete", Price: 6.50, Category: "Alimentos", Stock: 50, Barcode: "77509000"},
		{ID: "14", Name: "Detergente Bolivar 900g", Price: 14.50, Category: "Limpieza", Stock: 12, Barcode: "77510000"},
		{ID: "15", Name: "Papel Hig. Suave (pack 4)", Price: 6.00, Category: "Limpieza", Stock: 15, Barcode: "77511000"},
		{ID: "16", Name: "Shampoo H&S 400ml", Price: 18.90, Category: "Cuidado Personal", Stock: 8, Barcode: "77512000"},
		{
			ID: "17", Name: "Panetón D'Onofrio", Price: 28.00, Category: "Alimentos", Stock: 30, Barcode: "77513000",
			HasVariants: true,
			Variants: []domain.Variant{
				{ID: "v1", Name: "Caja", Price: 28.00, Stock: 20},
				{ID: "v2", Name: "Lata", Price: 32.00, Stock: 5},
				{ID: "v3", Name: "Bolsa (Chocoton)", Price: 29.50, Stock: 5},
			},
		},
	}
}
