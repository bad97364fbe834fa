package detect

// CurrencyClasses describes the banknote model: Indian rupee
// denominations. Thresholds are per class: the 10 note is small and
// frequently missed so it gets a lower bar, while 200 and 2000 share a
// color family and are easily confused with each other, so they demand
// stronger evidence.
func CurrencyClasses() ClassSet {
	return ClassSet{
		Names: []string{
			"10 rupees",
			"20 rupees",
			"50 rupees",
			"100 rupees",
			"200 rupees",
			"500 rupees",
			"2000 rupees",
		},
		Thresholds: map[int]float32{
			0: 0.35, // 10
			4: 0.60, // 200
			6: 0.65, // 2000
		},
		Default: 0.45,
	}
}

// ObjectClasses describes the general object model (COCO classes).
func ObjectClasses() ClassSet {
	return ClassSet{
		Names: []string{
			"person", "bicycle", "car", "motorcycle", "airplane", "bus",
			"train", "truck", "boat", "traffic light", "fire hydrant",
			"stop sign", "parking meter", "bench", "bird", "cat", "dog",
			"horse", "sheep", "cow", "elephant", "bear", "zebra",
			"giraffe", "backpack", "umbrella", "handbag", "tie",
			"suitcase", "frisbee", "skis", "snowboard", "sports ball",
			"kite", "baseball bat", "baseball glove", "skateboard",
			"surfboard", "tennis racket", "bottle", "wine glass", "cup",
			"fork", "knife", "spoon", "bowl", "banana", "apple",
			"sandwich", "orange", "broccoli", "carrot", "hot dog",
			"pizza", "donut", "cake", "chair", "couch", "potted plant",
			"bed", "dining table", "toilet", "tv", "laptop", "mouse",
			"remote", "keyboard", "cell phone", "microwave", "oven",
			"toaster", "sink", "refrigerator", "book", "clock", "vase",
			"scissors", "teddy bear", "hair drier", "toothbrush",
		},
		Thresholds: map[int]float32{},
		Default:    0.50,
	}
}
