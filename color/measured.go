package color

// MeasuredMedium holds the scattering coefficients of a measured
// participating medium in mm^-1
type MeasuredMedium struct {
	Name        string
	SigmaPrimeS Spectrum
	SigmaA      Spectrum
}

var measuredMedia = []MeasuredMedium{
	// Jensen, Marschner, Levoy, Hanrahan 2001
	{"Apple", RGB(2.29, 2.39, 1.97), RGB(0.0030, 0.0034, 0.046)},
	{"Chicken1", RGB(0.15, 0.21, 0.38), RGB(0.015, 0.077, 0.19)},
	{"Chicken2", RGB(0.19, 0.25, 0.32), RGB(0.018, 0.088, 0.20)},
	{"Cream", RGB(7.38, 5.47, 3.15), RGB(0.0002, 0.0028, 0.0163)},
	{"Ketchup", RGB(0.18, 0.07, 0.03), RGB(0.061, 0.97, 1.45)},
	{"Marble", RGB(2.19, 2.62, 3.00), RGB(0.0021, 0.0041, 0.0071)},
	{"Potato", RGB(0.68, 0.70, 0.55), RGB(0.0024, 0.0090, 0.12)},
	{"Skimmilk", RGB(0.70, 1.22, 1.90), RGB(0.0014, 0.0025, 0.0142)},
	{"Skin1", RGB(0.74, 0.88, 1.01), RGB(0.032, 0.17, 0.48)},
	{"Skin2", RGB(1.09, 1.59, 1.79), RGB(0.013, 0.070, 0.145)},
	{"Spectralon", RGB(11.6, 20.4, 14.9), RGB(0.00, 0.00, 0.00)},
	{"Wholemilk", RGB(2.55, 3.21, 3.77), RGB(0.0011, 0.0024, 0.014)},

	// Narasimhan, Gupta, Donner, Ramamoorthi, Nayar, Jensen 2006
	{"Lowfat Milk", RGB(0.912600, 1.074800, 1.250000), RGB(0.000200, 0.000400, 0.000800)},
	{"Reduced Milk", RGB(1.075000, 1.221300, 1.394100), RGB(0.000200, 0.000400, 0.001000)},
	{"Regular Milk", RGB(1.187400, 1.329600, 1.460200), RGB(0.000100, 0.000300, 0.001300)},
	{"Espresso", RGB(0.437600, 0.511500, 0.604800), RGB(0.166900, 0.228700, 0.307800)},
	{"Mint Mocha Coffee", RGB(0.190000, 0.260000, 0.350000), RGB(0.098400, 0.151900, 0.204000)},
	{"Lowfat Soy Milk", RGB(0.141900, 0.162500, 0.274000), RGB(0.000100, 0.000500, 0.002500)},
	{"Regular Soy Milk", RGB(0.243400, 0.271900, 0.459700), RGB(0.000100, 0.000500, 0.003400)},
	{"Lowfat Chocolate Milk", RGB(0.428200, 0.501400, 0.579100), RGB(0.000500, 0.001600, 0.006800)},
	{"Regular Chocolate Milk", RGB(0.735900, 0.917200, 1.068800), RGB(0.000700, 0.003000, 0.010000)},
	{"Coke", RGB(0.714300, 1.168800, 1.716900), RGB(0.696600, 1.148000, 1.716900)},
	{"Pepsi", RGB(0.643300, 0.999000, 1.442000), RGB(0.637500, 0.984900, 1.442000)},
	{"Sprite", RGB(0.129900, 0.128300, 0.139500), RGB(0.123000, 0.119400, 0.130600)},
	{"Gatorade", RGB(0.400900, 0.418500, 0.432400), RGB(0.161700, 0.125800, 0.057900)},
	{"Chardonnay", RGB(0.157700, 0.174800, 0.351200), RGB(0.154700, 0.170100, 0.344300)},
	{"White Zinfandel", RGB(0.176300, 0.237000, 0.291300), RGB(0.173200, 0.232200, 0.284700)},
	{"Merlot", RGB(0.763900, 1.642900, 1.919600), RGB(0.758600, 1.642900, 1.919600)},
	{"Budweiser Beer", RGB(0.148600, 0.321000, 0.736000), RGB(0.144900, 0.314100, 0.728600)},
	{"Coors Light Beer", RGB(0.029500, 0.066300, 0.152100), RGB(0.026800, 0.060800, 0.152100)},
	{"Clorox", RGB(0.160000, 0.250000, 0.330000), RGB(0.017500, 0.077700, 0.137200)},
	{"Apple Juice", RGB(0.121500, 0.210100, 0.440700), RGB(0.101400, 0.185800, 0.408400)},
	{"Cranberry Juice", RGB(0.270000, 0.630000, 0.830000), RGB(0.257200, 0.614500, 0.810400)},
	{"Grape Juice", RGB(0.550000, 1.250000, 1.530000), RGB(0.542800, 1.250000, 1.530000)},
	{"Ruby Grapefruit Juice", RGB(0.251300, 0.351700, 0.430500), RGB(0.089600, 0.191100, 0.263600)},
	{"White Grapefruit Juice", RGB(0.360900, 0.380000, 0.563200), RGB(0.009600, 0.013100, 0.039500)},
	{"Shampoo", RGB(0.028800, 0.071000, 0.095200), RGB(0.018400, 0.059600, 0.080500)},
	{"Strawberry Shampoo", RGB(0.021700, 0.078800, 0.102200), RGB(0.018900, 0.075600, 0.098900)},
	{"Head & Shoulders Shampoo", RGB(0.367400, 0.452700, 0.521100), RGB(0.088300, 0.163700, 0.212500)},
	{"Lemon Tea", RGB(0.340000, 0.580000, 0.880000), RGB(0.260200, 0.490200, 0.772700)},
	{"Orange Juice Powder", RGB(0.337700, 0.557300, 1.012200), RGB(0.144900, 0.344100, 0.786300)},
	{"Pink Lemonade", RGB(0.240000, 0.370000, 0.450000), RGB(0.116500, 0.236600, 0.319500)},
	{"Cappuccino Powder", RGB(0.257400, 0.353600, 0.484000), RGB(0.192000, 0.265400, 0.327200)},
	{"Salt Powder", RGB(0.760000, 0.868500, 0.936300), RGB(0.511500, 0.586300, 0.614700)},
	{"Sugar Powder", RGB(0.079500, 0.175900, 0.278000), RGB(0.065000, 0.159700, 0.257800)},
	{"Suisse Mocha", RGB(0.509800, 0.647600, 0.794400), RGB(0.187500, 0.289300, 0.379600)},
	{"Pacific Ocean Surface Water", RGB(3.364500, 3.315800, 3.242800), RGB(3.184500, 3.132400, 3.014700)},
}

// LookupMedium finds a measured medium by its exact name
func LookupMedium(name string) (MeasuredMedium, bool) {
	for _, m := range measuredMedia {
		if m.Name == name {
			return m, true
		}
	}
	return MeasuredMedium{}, false
}

// MediumNames lists the names of all measured media in table order
func MediumNames() []string {
	names := make([]string, len(measuredMedia))
	for i, m := range measuredMedia {
		names[i] = m.Name
	}
	return names
}
