package textscan

// technicalKeywords is the curated phrase list used for depth detection and
// concept extraction. Matching is substring-based on lowercased text, so
// multi-word phrases are checked as written. Order matters for concept
// extraction output, keep related terms grouped.
var technicalKeywords = []string{
	// AI general
	"artificial intelligence", "neural network", "deep learning", "machine learning",
	"reinforcement learning", "supervised learning", "unsupervised learning",
	"natural language processing", "computer vision", "generative ai",

	// ML algorithms
	"linear regression", "logistic regression", "decision tree", "random forest",
	"gradient boosting", "xgboost", "lightgbm", "catboost", "svm", "support vector",
	"naive bayes", "k-means", "clustering", "classification", "regression",
	"ensemble", "bagging", "boosting", "cross-validation", "hyperparameter",

	// Deep learning
	"cnn", "rnn", "lstm", "gru", "transformer", "attention mechanism",
	"self-attention", "multi-head attention", "encoder", "decoder",
	"autoencoder", "variational autoencoder", "vae", "gan", "generative adversarial",
	"diffusion model", "stable diffusion", "convolution", "pooling", "dropout",
	"batch normalization", "layer normalization", "residual connection",
	"skip connection", "feedforward", "backpropagation", "gradient descent",
	"optimizer", "adam", "sgd", "learning rate", "loss function", "activation function",
	"relu", "sigmoid", "softmax", "tanh", "gelu",

	// NLP
	"tokenization", "embedding", "word2vec", "glove", "fasttext", "bert", "gpt",
	"llm", "large language model", "fine-tuning", "prompt engineering",
	"rag", "retrieval augmented", "semantic search", "text classification",
	"named entity recognition", "ner", "sentiment analysis", "summarization",

	// Computer vision
	"image classification", "object detection", "segmentation", "yolo",
	"resnet", "vgg", "inception", "efficientnet", "feature extraction",
	"data augmentation", "transfer learning",

	// Data science
	"exploratory data analysis", "eda", "feature engineering", "feature selection",
	"data preprocessing", "data cleaning", "missing values", "outlier detection",
	"normalization", "standardization", "one-hot encoding", "label encoding",
	"train test split", "overfitting", "underfitting", "bias variance",
	"confusion matrix", "precision", "recall", "f1 score", "roc auc",
	"accuracy", "cross entropy", "mse", "mae", "rmse",

	// Frameworks and libraries
	"tensorflow", "pytorch", "keras", "scikit-learn", "sklearn", "pandas",
	"numpy", "matplotlib", "seaborn", "huggingface", "transformers",
	"langchain", "llamaindex", "opencv", "spacy", "nltk",

	// MLOps
	"mlflow", "wandb", "tensorboard", "model deployment", "inference",
	"model serving", "containerization", "docker", "kubernetes",
	"feature store", "model registry", "a/b testing", "canary deployment",

	// Mathematics
	"linear algebra", "matrix", "vector", "tensor", "gradient", "derivative",
	"partial derivative", "chain rule", "jacobian", "hessian", "eigenvalue",
	"eigenvector", "probability", "statistics", "bayesian", "prior", "posterior",
	"likelihood", "distribution", "gaussian", "normal distribution",
	"cost function", "objective function", "optimization",
}

// topicOrder fixes iteration order over topicKeywords so classification is
// deterministic.
var topicOrder = []string{"AI", "ML", "DL", "DS"}

var topicKeywords = map[string][]string{
	"AI": {
		"artificial intelligence", "ai", "intelligent systems", "expert systems",
		"knowledge representation", "reasoning", "planning", "agents",
		"multi-agent", "cognitive", "symbolic ai", "neural-symbolic",
	},
	"ML": {
		"machine learning", "ml", "supervised", "unsupervised", "semi-supervised",
		"classification", "regression", "clustering", "dimensionality reduction",
		"feature engineering", "model selection", "hyperparameter tuning",
		"ensemble methods", "cross-validation", "bias-variance",
	},
	"DL": {
		"deep learning", "neural network", "cnn", "rnn", "lstm", "transformer",
		"attention", "encoder", "decoder", "autoencoder", "gan", "vae",
		"convolution", "backpropagation", "gpu", "cuda", "pytorch", "tensorflow",
	},
	"DS": {
		"data science", "data analysis", "exploratory", "eda", "visualization",
		"pandas", "statistics", "hypothesis testing", "a/b test",
		"data cleaning", "data wrangling", "etl", "sql", "data pipeline",
	},
}
