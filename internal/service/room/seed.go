package room

import "github.com/dumeirei/foodstay-backend/internal/models"

// demoRooms 开发环境演示房间
func demoRooms() []*models.Room {
	return []*models.Room{
		{
			RoomNumber:      "101",
			Type:            models.RoomTypeSingle,
			Price:           89,
			Capacity:        1,
			Size:            "250 sq ft",
			Amenities:       []string{"WiFi", "TV", "AC", "Mini Bar", "Coffee Maker"},
			Features:        []string{"Queen Bed", "Work Desk", "Private Bathroom", "City View"},
			Image:           "https://images.unsplash.com/photo-1631049307264-da0ec9d70304?w=400",
			Description:     "Comfortable single room perfect for solo travelers with all essential amenities",
			IsAvailable:     true,
			BedType:         models.BedTypeQueen,
			View:            models.RoomViewCity,
			Wifi:            true,
			AirConditioning: true,
			Television:      true,
			Minibar:         true,
		},
		{
			RoomNumber:      "201",
			Type:            models.RoomTypeDouble,
			Price:           129,
			Capacity:        2,
			Size:            "350 sq ft",
			Amenities:       []string{"WiFi", "TV", "AC", "Mini Bar", "Coffee Maker", "Safe"},
			Features:        []string{"King Bed", "Sitting Area", "Private Bathroom", "Mountain View", "Balcony"},
			Image:           "https://images.unsplash.com/photo-1566665797739-1674de7a421a?w=400",
			Description:     "Spacious double room ideal for couples or business travelers with extra comfort",
			IsAvailable:     true,
			BedType:         models.BedTypeKing,
			View:            models.RoomViewMountain,
			Wifi:            true,
			AirConditioning: true,
			Television:      true,
			Minibar:         true,
		},
		{
			RoomNumber:      "301",
			Type:            models.RoomTypeSuite,
			Price:           199,
			Capacity:        3,
			Size:            "500 sq ft",
			Amenities:       []string{"WiFi", "TV", "AC", "Mini Bar", "Coffee Maker", "Safe", "Jacuzzi"},
			Features:        []string{"King Bed", "Living Room", "Private Bathroom", "Ocean View", "Balcony", "Kitchenette"},
			Image:           "https://images.unsplash.com/photo-1586023492125-27b2c045efd7?w=400",
			Description:     "Luxurious suite with separate living area and premium amenities for ultimate comfort",
			IsAvailable:     true,
			BedType:         models.BedTypeKing,
			View:            models.RoomViewOcean,
			Wifi:            true,
			AirConditioning: true,
			Television:      true,
			Minibar:         true,
			RoomService:     true,
		},
		{
			RoomNumber:      "401",
			Type:            models.RoomTypeDeluxe,
			Price:           299,
			Capacity:        4,
			Size:            "650 sq ft",
			Amenities:       []string{"WiFi", "TV", "AC", "Mini Bar", "Coffee Maker", "Safe", "Jacuzzi", "Kitchenette"},
			Features:        []string{"Two King Beds", "Dining Area", "Private Bathroom", "Panoramic View", "Smart Home"},
			Image:           "https://images.unsplash.com/photo-1611892440504-42a792e24d32?w=400",
			Description:     "Premium deluxe room with exceptional comfort, luxury amenities and panoramic views",
			IsAvailable:     true,
			BedType:         models.BedTypeKing,
			View:            models.RoomViewOcean,
			Wifi:            true,
			AirConditioning: true,
			Television:      true,
			Minibar:         true,
			RoomService:     true,
		},
	}
}
